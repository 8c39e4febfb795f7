// Package connectevent defines the Amazon Connect contact event shape consumed
// by the Lambda handlers and typed accessors over its attribute maps.
package connectevent

import (
	"strconv"
	"strings"
)

// ReferenceTypeEmail marks a contact reference that points at an attached
// email message.
const ReferenceTypeEmail = "EMAIL_MESSAGE"

// SubjectSegmentAttribute is the segment attribute Connect sets to the inbound
// email subject line.
const SubjectSegmentAttribute = "connect:EmailSubject"

// Event is the invocation payload delivered by an Amazon Connect contact flow.
type Event struct {
	Details Details `json:"Details"`
}

// Details wraps the contact data and any flow-supplied parameters.
type Details struct {
	ContactData ContactData       `json:"ContactData"`
	Parameters  map[string]string `json:"Parameters,omitempty"`
}

// ContactData describes the inbound contact.
type ContactData struct {
	ContactID         string                      `json:"ContactId"`
	InstanceARN       string                      `json:"InstanceARN"`
	Attributes        map[string]string           `json:"Attributes,omitempty"`
	SegmentAttributes map[string]SegmentAttribute `json:"SegmentAttributes,omitempty"`
	References        map[string]Reference        `json:"References,omitempty"`
}

// SegmentAttribute is a typed contact segment attribute value.
type SegmentAttribute struct {
	ValueString string `json:"ValueString"`
}

// Reference is a contact reference; for email contacts the attached message
// file identifier may appear under any of Value, Reference or Id depending on
// the flow version that produced the event.
type Reference struct {
	Type  string `json:"Type"`
	Value string `json:"Value,omitempty"`
	Ref   string `json:"Reference,omitempty"`
	ID    string `json:"Id,omitempty"`
}

// FileID resolves the attached file identifier for a reference, trying the
// alternate fields in their fixed priority order and falling back to the
// reference's own map key.
func (r Reference) FileID(key string) string {
	for _, candidate := range []string{r.Value, r.Ref, r.ID, key} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// Attribute returns the named contact attribute, checking the flat Attributes
// map first and then the SegmentAttributes value. Values are trimmed; a
// missing or empty value returns ("", false).
func (cd *ContactData) Attribute(name string) (string, bool) {
	if v := strings.TrimSpace(cd.Attributes[name]); v != "" {
		return v, true
	}
	if seg, ok := cd.SegmentAttributes[name]; ok {
		if v := strings.TrimSpace(seg.ValueString); v != "" {
			return v, true
		}
	}
	return "", false
}

// IntAttribute returns the named attribute parsed as an integer. A missing
// value or one that does not parse returns (0, false) rather than an error.
func (cd *ContactData) IntAttribute(name string) (int, bool) {
	v, ok := cd.Attribute(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// InstanceID extracts the Connect instance identifier from the instance ARN
// (arn:aws:connect:region:account:instance/<id>).
func (cd *ContactData) InstanceID() string {
	parts := strings.Split(cd.InstanceARN, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// ContactARN builds the contact resource ARN used when fetching attached
// files.
func (cd *ContactData) ContactARN() string {
	return cd.InstanceARN + "/contact/" + cd.ContactID
}
