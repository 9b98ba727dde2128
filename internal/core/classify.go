package core

// Class is the single eligibility bucket a member falls into.
type Class int

const (
	ClassRegular Class = iota
	ClassExceptional
	ClassNotAllowed
)

func (c Class) String() string {
	switch c {
	case ClassRegular:
		return "regular"
	case ClassExceptional:
		return "exceptional"
	case ClassNotAllowed:
		return "not_allowed"
	default:
		return "unknown"
	}
}

// Flags are the derived eligibility facts of a member.
type Flags struct {
	Graduated         bool
	CourseExceptional bool
	CourseNotAllowed  bool
}

// Exceptional reports whether the member gets special visual treatment.
func (f Flags) Exceptional() bool {
	return f.Graduated || f.CourseExceptional || f.CourseNotAllowed
}

// Class collapses the flags into one bucket. Not-allowed wins over
// exceptional.
func (f Flags) Class() Class {
	switch {
	case f.CourseNotAllowed:
		return ClassNotAllowed
	case f.Exceptional():
		return ClassExceptional
	default:
		return ClassRegular
	}
}

// Classify derives the flags of m against its organization's course lists.
// With strict off, an unknown course is accepted silently.
func Classify(m Member, strict bool) Flags {
	f := Flags{Graduated: m.Graduated}
	if m.Org == nil {
		return f
	}
	f.CourseExceptional = m.Org.IsExceptionalCourse(m.Course)
	f.CourseNotAllowed = strict && !m.Org.IsKnownCourse(m.Course)
	return f
}
