package core

import (
	"fmt"
	"hash/adler32"
	"strconv"
	"strings"

	"github.com/JonMunkholm/credgrid/internal/config"
)

// Suffix markers appended to a masked id, in this order.
const (
	SuffixExceptionalCourse = "-NE"
	SuffixGraduated         = "-F"
)

// payloadFields is the number of values carried in a QR payload.
const payloadFields = 4

// Codec derives the printable identifier, the checksum and the QR payload
// of a member. A Codec is a plain value and safe for concurrent use.
type Codec struct {
	MaskWidth     int
	HashSeparator string
	QRSeparator   string
}

// DefaultCodec returns the codec used when nothing is configured.
func DefaultCodec() Codec {
	return Codec{MaskWidth: 3, HashSeparator: ",", QRSeparator: "\n"}
}

// NewCodec builds a Codec from the roster configuration.
func NewCodec(cfg config.RosterConfig) Codec {
	c := DefaultCodec()
	if cfg.MaskWidth > 0 {
		c.MaskWidth = cfg.MaskWidth
	}
	if cfg.HashSeparator != "" {
		c.HashSeparator = cfg.HashSeparator
	}
	if cfg.QRSeparator != "" {
		c.QRSeparator = cfg.QRSeparator
	}
	return c
}

// mask left-pads id with zeros and keeps the rightmost MaskWidth digits.
func (c Codec) mask(id int) string {
	digits := strconv.Itoa(id)
	if len(digits) < c.MaskWidth {
		return strings.Repeat("0", c.MaskWidth-len(digits)) + digits
	}
	return digits[len(digits)-c.MaskWidth:]
}

// MaskedID returns the short printable identifier of m: the organization
// tag, the masked id and the status suffixes.
//
//	tag "ABC", id 7            -> "ABC007"
//	tag "ABC", id 12345, grad  -> "ABC345-F"
func (c Codec) MaskedID(m Member) string {
	var b strings.Builder
	if m.Org != nil {
		b.WriteString(m.Org.Tag)
	}
	b.WriteString(c.mask(m.ID))
	if m.Org != nil && m.Org.IsExceptionalCourse(m.Course) {
		b.WriteString(SuffixExceptionalCourse)
	}
	if m.Graduated {
		b.WriteString(SuffixGraduated)
	}
	return b.String()
}

// hashFields lists the raw values covered by the checksum, in order.
func hashFields(m Member) []string {
	orgName := ""
	if m.Org != nil {
		orgName = m.Org.Name
	}
	return []string{
		strconv.Itoa(m.ID),
		m.Name,
		m.RA,
		m.Course,
		strconv.FormatBool(m.Graduated),
		orgName,
	}
}

// Checksum returns the Adler-32 of the member's raw fields as lowercase hex.
// It lets a person spot a hand-edited badge. It is not a security control.
func (c Codec) Checksum(m Member) string {
	sum := adler32.Checksum([]byte(strings.Join(hashFields(m), c.HashSeparator)))
	return strconv.FormatUint(uint64(sum), 16)
}

// Payload returns the text encoded in the member's QR code:
// checksum, masked id, name and organization name.
func (c Codec) Payload(m Member) string {
	orgName := ""
	if m.Org != nil {
		orgName = m.Org.Name
	}
	return JoinPayload(c.QRSeparator, c.Checksum(m), c.MaskedID(m), m.Name, orgName)
}

// JoinPayload joins QR payload fields with sep.
func JoinPayload(sep string, fields ...string) string {
	return strings.Join(fields, sep)
}

// CheckOrganization reports an organization whose name or tag contains the
// QR separator. Every payload of such an organization would be ambiguous.
func (c Codec) CheckOrganization(org *Organization) error {
	for _, v := range []string{org.Name, org.Tag} {
		if strings.Contains(v, c.QRSeparator) {
			return fmt.Errorf("organization %q: %w %q", org.Name, ErrSeparatorInField, c.QRSeparator)
		}
	}
	return nil
}

// CheckPayload reports whether the payload of m splits back into exactly
// the fields it was built from.
func (c Codec) CheckPayload(m Member) error {
	got, err := c.SplitPayload(c.Payload(m))
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrSeparatorInField, c.QRSeparator, err)
	}
	orgName := ""
	if m.Org != nil {
		orgName = m.Org.Name
	}
	if got.MaskedID != c.MaskedID(m) || got.Name != m.Name || got.OrgName != orgName {
		return fmt.Errorf("%w %q", ErrSeparatorInField, c.QRSeparator)
	}
	return nil
}

// PayloadFields is the decoded content of a QR payload.
type PayloadFields struct {
	Checksum string
	MaskedID string
	Name     string
	OrgName  string
}

// SplitPayload decodes a payload produced by Payload.
func (c Codec) SplitPayload(s string) (PayloadFields, error) {
	parts := strings.Split(s, c.QRSeparator)
	if len(parts) != payloadFields {
		return PayloadFields{}, fmt.Errorf("payload has %d fields, want %d", len(parts), payloadFields)
	}
	return PayloadFields{
		Checksum: parts[0],
		MaskedID: parts[1],
		Name:     parts[2],
		OrgName:  parts[3],
	}, nil
}
