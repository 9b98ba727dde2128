package core

import (
	"context"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/credgrid/internal/config"
	"github.com/JonMunkholm/credgrid/internal/logging"
)

// Loader reads, normalizes and filters one roster file for one organization.
type Loader struct {
	cfg     config.RosterConfig
	columns ColumnMap
	index   HeaderIndex
	logger  *slog.Logger
}

// NewLoader creates a Loader. A nil logger discards warnings.
func NewLoader(cfg config.RosterConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loader{
		cfg:     cfg,
		columns: DefaultColumns(),
		index:   MakeHeaderIndex(cfg.Headers),
		logger:  logger,
	}
}

// LoadInput loads the roster of a resolved input.
func (l *Loader) LoadInput(ctx context.Context, in Input) (*Roster, error) {
	return l.Load(ctx, in.Roster, in.Org)
}

// Load reads the roster at path and returns the members of org that pass
// eligibility, in file order. Dropped rows are recorded on the Roster and
// logged at warn level when warnings are enabled.
func (l *Loader) Load(ctx context.Context, path string, org *Organization) (*Roster, error) {
	if err := l.columns.Validate(); err != nil {
		return nil, err
	}
	codec := NewCodec(l.cfg)
	if err := codec.CheckOrganization(org); err != nil {
		return nil, err
	}

	reader, err := ReaderFor(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}

	rows, err := reader.ReadRows(ctx, path, l.index)
	if err != nil {
		return nil, err
	}

	candidates, rowErrs := Normalize(rows, l.columns, l.cfg.SkipLines)
	roster := l.Admit(candidates, org)
	roster.RowErrors = append(rowErrs, roster.RowErrors...)

	if l.cfg.ShowWarnings {
		log := l.logger.With("org", org.Name, "file", path)
		for _, re := range roster.RowErrors {
			log.Warn("dropping unreadable row", "line", re.Line, "field", re.Field, "error", re.Err)
		}
		for _, ex := range roster.Exclusions {
			log.Warn(ex.Error(), "line", ex.Line, "reason", string(ex.Reason))
		}
	}

	return roster, ctx.Err()
}

// Admit binds candidates to org and applies the eligibility rules:
//   - without include-missing, a member with no course or no
//     registration code is excluded as missing information
//   - without include-missing, a member whose course is not allowed
//     under strict validation is excluded
//
// A member whose QR payload would not split back into its fields is
// dropped as a RowError.
func (l *Loader) Admit(candidates []Candidate, org *Organization) *Roster {
	roster := &Roster{Org: org, Members: make([]Member, 0, len(candidates))}
	codec := NewCodec(l.cfg)

	for _, c := range candidates {
		m, err := NewMember(c, org)
		if err == nil {
			err = codec.CheckPayload(m)
		}
		if err != nil {
			roster.RowErrors = append(roster.RowErrors, &RowError{Line: c.Line, Field: FieldName, Name: c.Name, Err: err})
			continue
		}

		if !l.cfg.IncludeMissing {
			if m.Course == "" || strings.TrimSpace(m.RA) == "" {
				roster.Exclusions = append(roster.Exclusions, Exclusion{
					Line: c.Line, Name: m.Name, Course: m.Course, Reason: ReasonMissingInfo,
				})
				continue
			}
			if Classify(m, l.cfg.ValidateCourses).CourseNotAllowed {
				roster.Exclusions = append(roster.Exclusions, Exclusion{
					Line: c.Line, Name: m.Name, Course: m.Course, Reason: ReasonCourseNotAllowed,
				})
				continue
			}
		}

		roster.Members = append(roster.Members, m)
	}
	return roster
}
