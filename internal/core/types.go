package core

import (
	"fmt"
	"strings"
)

// Courses lists the course (category) identifiers an organization accepts.
type Courses struct {
	Regular     []string `json:"regular" yaml:"regular"`
	Exceptional []string `json:"exceptional" yaml:"exceptional"`
}

// Organization is the entity a roster belongs to. It is built once per run
// from a descriptor and shared read-only by every member of its roster.
type Organization struct {
	Name    string
	Tag     string
	Courses Courses

	// RosterFile and OutputFile are the resolved paths, possibly overridden
	// by the descriptor.
	RosterFile string
	OutputFile string

	regular     map[string]struct{}
	exceptional map[string]struct{}
}

// NewOrganization builds an Organization and indexes its course lists.
// Course names are compared after trimming surrounding whitespace.
func NewOrganization(name, tag string, courses Courses) (*Organization, error) {
	name = collapseSpace(name)
	tag = strings.TrimSpace(tag)
	if name == "" {
		return nil, fmt.Errorf("organization name is required")
	}
	if tag == "" {
		return nil, fmt.Errorf("organization %q: tag is required", name)
	}

	org := &Organization{
		Name:        name,
		Tag:         tag,
		Courses:     courses,
		regular:     toSet(courses.Regular),
		exceptional: toSet(courses.Exceptional),
	}
	return org, nil
}

// collapseSpace trims s and turns every run of whitespace, line breaks
// included, into a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = struct{}{}
	}
	return set
}

// IsExceptionalCourse reports whether course is in the exceptional list.
func (o *Organization) IsExceptionalCourse(course string) bool {
	_, ok := o.exceptional[strings.TrimSpace(course)]
	return ok
}

// IsKnownCourse reports whether course is in either course list.
func (o *Organization) IsKnownCourse(course string) bool {
	course = strings.TrimSpace(course)
	if _, ok := o.regular[course]; ok {
		return true
	}
	_, ok := o.exceptional[course]
	return ok
}

// Member is one roster entry, the unit of credential rendering.
// Members are values: derived data (masked id, checksum, flags) is always
// computed from them and never cached on them.
type Member struct {
	ID        int
	Name      string
	RA        string // registration code
	Course    string
	Graduated bool
	Org       *Organization
}

// NewMember validates a normalized candidate and binds it to org.
func NewMember(c Candidate, org *Organization) (Member, error) {
	name := collapseSpace(c.Name)
	if name == "" {
		return Member{}, fmt.Errorf("line %d: name is empty", c.Line)
	}
	if c.ID <= 0 {
		return Member{}, fmt.Errorf("line %d: id must be positive, got %d", c.Line, c.ID)
	}
	if org == nil {
		return Member{}, fmt.Errorf("line %d: member has no organization", c.Line)
	}

	return Member{
		ID:        c.ID,
		Name:      name,
		RA:        strings.TrimSpace(c.RA),
		Course:    strings.TrimSpace(c.Course),
		Graduated: c.Graduated,
		Org:       org,
	}, nil
}

// Roster is the ordered list of members for one organization.
// Member order is render order.
type Roster struct {
	Org        *Organization
	Members    []Member
	RowErrors  []*RowError
	Exclusions []Exclusion
}

// Len returns the number of members that will be rendered.
func (r *Roster) Len() int {
	return len(r.Members)
}

// Find returns the member with the given id.
func (r *Roster) Find(id int) (Member, bool) {
	for _, m := range r.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// Dropped returns how many rows were read but not kept.
func (r *Roster) Dropped() int {
	return len(r.RowErrors) + len(r.Exclusions)
}
