package core

// error_messages.go maps failures to coded, user-facing messages for the
// run summary. Operators can quote the code when reporting a problem.
//
//	ROW001    - Row could not be parsed (bad id, missing column)
//	VAL001    - Member excluded by validation rules
//	DESC001   - Organization descriptor missing or invalid
//	ASSET001  - Theme artwork or font could not be loaded
//	LAYOUT001 - Grid or theme geometry is invalid
//	IO001     - Input file could not be read
//	IO002     - Output file could not be written
//	IO003     - Two inputs resolve to the same output file
//	RUN001    - Run cancelled or timed out
//	SKIP001   - Organization had no printable members
//	SKIP002   - Input matched twice under different file names
//	ERR000    - Anything else; check the log
//
// Typed errors carry their own code through the Coded interface. Untyped
// errors fall back to case-insensitive pattern matching, first match wins.

import (
	"context"
	"errors"
	"strings"
)

// Coded is implemented by errors that know their user-facing code.
type Coded interface {
	Code() string
}

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var messagesByCode = map[string]UserMessage{
	"ROW001": {
		Message: "A roster row could not be read",
		Action:  "Check the id and name columns of the reported line",
	},
	"VAL001": {
		Message: "A member was left out by validation rules",
		Action:  "Register the course in the descriptor or run with --include-missing",
	},
	"DESC001": {
		Message: "Organization descriptor is missing or invalid",
		Action:  "Add a .json or .yaml descriptor next to the roster with name and tag",
	},
	"ASSET001": {
		Message: "Theme artwork or font could not be loaded",
		Action:  "Check RENDER_IMAGES_DIR and RENDER_FONTS_DIR",
	},
	"LAYOUT001": {
		Message: "Layout geometry is invalid",
		Action:  "Fix the rows, columns and cell size of the selected layout",
	},
	"IO001": {
		Message: "Input file could not be read",
		Action:  "Verify the file exists and is readable",
	},
	"IO002": {
		Message: "Output file could not be written",
		Action:  "Verify the output directory exists and is writable",
	},
	"IO003": {
		Message: "Two inputs would write the same output file",
		Action:  "Set a distinct outputFile in one of the descriptors",
	},
	"RUN001": {
		Message: "Run was cancelled or timed out",
		Action:  "Retry, or raise BATCH_TIMEOUT",
	},
	"SKIP001": {
		Message: "No member of this organization could be printed",
		Action:  "Check the roster and the exclusion warnings in the log",
	},
	"SKIP002": {
		Message: "This organization was already matched through another file",
		Action:  "Nothing to do; narrow the pattern to silence this",
	},
	"ERR000": {
		Message: "An unexpected error occurred",
		Action:  "Check the log for details",
	},
}

// errorPattern defines a pattern to match and its corresponding code.
type errorPattern struct {
	pattern string
	code    string
}

var errorPatterns = []errorPattern{
	{pattern: "no organization descriptor", code: "DESC001"},
	{pattern: "descriptor", code: "DESC001"},
	{pattern: "output collision", code: "IO003"},
	{pattern: "input already matched", code: "SKIP002"},
	{pattern: "no such file", code: "IO001"},
	{pattern: "permission denied", code: "IO001"},
	{pattern: "unsupported roster format", code: "IO001"},
}

// MapError converts an error to a UserMessage.
// Returns nil for a nil error.
func MapError(err error) *UserMessage {
	if err == nil {
		return nil
	}

	code := "ERR000"

	var coded Coded
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = "RUN001"
	case errors.Is(err, ErrNoDescriptor), errors.Is(err, ErrSeparatorInField):
		code = "DESC001"
	case errors.Is(err, ErrEmptyRoster):
		code = "SKIP001"
	case errors.As(err, &coded):
		code = coded.Code()
	default:
		lower := strings.ToLower(err.Error())
		for _, p := range errorPatterns {
			if strings.Contains(lower, p.pattern) {
				code = p.code
				break
			}
		}
	}

	msg, ok := messagesByCode[code]
	if !ok {
		msg = messagesByCode["ERR000"]
		code = "ERR000"
	}
	msg.Code = code
	return &msg
}

// FormatForUser returns a single string with message, action and code.
func (m *UserMessage) FormatForUser() string {
	if m == nil {
		return ""
	}
	return m.Message + ". " + m.Action + " (" + m.Code + ")"
}
