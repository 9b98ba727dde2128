package core

import (
	"errors"
	"fmt"
)

// ErrNoDescriptor indicates a roster file has no sibling organization descriptor.
var ErrNoDescriptor = errors.New("no organization descriptor found")

// ErrEmptyRoster indicates a roster with no members left to render.
var ErrEmptyRoster = errors.New("roster has no members")

// ErrSeparatorInField indicates a value that contains the QR payload
// separator and would not survive a payload round trip.
var ErrSeparatorInField = errors.New("value contains the QR separator")

// ErrUnsupportedFormat indicates an input extension the loader cannot read.
var ErrUnsupportedFormat = errors.New("unsupported roster format")

// RowError records a raw row that failed field extraction.
type RowError struct {
	Line  int
	Field string
	Name  string // member name, when it could be read
	Err   error
}

func (e *RowError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("line %d (%s): field %s: %v", e.Line, e.Name, e.Field, e.Err)
	}
	return fmt.Sprintf("line %d: field %s: %v", e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Code implements Coded.
func (e *RowError) Code() string { return "ROW001" }

// ExclusionReason says why a parsed member was left out of the roster.
type ExclusionReason string

const (
	ReasonMissingInfo      ExclusionReason = "missing_info"
	ReasonCourseNotAllowed ExclusionReason = "course_not_allowed"
)

// Exclusion records a member that parsed correctly but failed eligibility.
type Exclusion struct {
	Line   int
	Name   string
	Course string
	Reason ExclusionReason
}

func (e Exclusion) Error() string {
	switch e.Reason {
	case ReasonMissingInfo:
		return fmt.Sprintf("line %d: ignoring %s because there is missing information about them", e.Line, e.Name)
	case ReasonCourseNotAllowed:
		return fmt.Sprintf("line %d: ignoring %s because course %q is not registered in the courses list", e.Line, e.Name, e.Course)
	default:
		return fmt.Sprintf("line %d: ignoring %s", e.Line, e.Name)
	}
}

// Code implements Coded.
func (e Exclusion) Code() string { return "VAL001" }

// FileError wraps an I/O failure on a specific path.
type FileError struct {
	Op   string // "read", "write", "resolve"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Code implements Coded.
func (e *FileError) Code() string {
	if e.Op == "write" {
		return "IO002"
	}
	return "IO001"
}
