package connectevent

import "testing"

func TestAttribute(t *testing.T) {
	cd := &ContactData{
		Attributes: map[string]string{
			"CustomerName": "  Jane Doe  ",
			"Empty":        "   ",
		},
		SegmentAttributes: map[string]SegmentAttribute{
			"ServiceLevel": {ValueString: "Premium"},
			"CustomerName": {ValueString: "Shadowed"},
		},
	}

	tests := []struct {
		name   string
		attr   string
		want   string
		wantOK bool
	}{
		{name: "flat attribute trimmed", attr: "CustomerName", want: "Jane Doe", wantOK: true},
		{name: "segment attribute fallback", attr: "ServiceLevel", want: "Premium", wantOK: true},
		{name: "whitespace-only is missing", attr: "Empty", wantOK: false},
		{name: "absent", attr: "Nope", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cd.Attribute(tt.attr)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Attribute(%q) = (%q, %v), want (%q, %v)", tt.attr, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAttributePrefersFlatMap(t *testing.T) {
	cd := &ContactData{
		Attributes:        map[string]string{"CreditScore": "720"},
		SegmentAttributes: map[string]SegmentAttribute{"CreditScore": {ValueString: "100"}},
	}
	got, ok := cd.Attribute("CreditScore")
	if !ok || got != "720" {
		t.Errorf("Attribute(CreditScore) = (%q, %v), want (720, true)", got, ok)
	}
}

func TestIntAttribute(t *testing.T) {
	cd := &ContactData{
		Attributes: map[string]string{
			"CreditScore": "720",
			"NotANumber":  "seven",
		},
	}

	if n, ok := cd.IntAttribute("CreditScore"); !ok || n != 720 {
		t.Errorf("IntAttribute(CreditScore) = (%d, %v), want (720, true)", n, ok)
	}
	if _, ok := cd.IntAttribute("NotANumber"); ok {
		t.Error("IntAttribute(NotANumber) ok = true, want false")
	}
	if _, ok := cd.IntAttribute("Missing"); ok {
		t.Error("IntAttribute(Missing) ok = true, want false")
	}
}

func TestReferenceFileID(t *testing.T) {
	tests := []struct {
		name string
		ref  Reference
		key  string
		want string
	}{
		{name: "value first", ref: Reference{Value: "v", Ref: "r", ID: "i"}, key: "k", want: "v"},
		{name: "reference second", ref: Reference{Ref: "r", ID: "i"}, key: "k", want: "r"},
		{name: "id third", ref: Reference{ID: "i"}, key: "k", want: "i"},
		{name: "map key last", ref: Reference{}, key: "k", want: "k"},
		{name: "nothing", ref: Reference{}, key: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.FileID(tt.key); got != tt.want {
				t.Errorf("FileID(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestInstanceIDAndContactARN(t *testing.T) {
	cd := &ContactData{
		ContactID:   "contact-123",
		InstanceARN: "arn:aws:connect:eu-west-2:123456789012:instance/inst-abc",
	}

	if got := cd.InstanceID(); got != "inst-abc" {
		t.Errorf("InstanceID() = %q, want inst-abc", got)
	}
	want := "arn:aws:connect:eu-west-2:123456789012:instance/inst-abc/contact/contact-123"
	if got := cd.ContactARN(); got != want {
		t.Errorf("ContactARN() = %q, want %q", got, want)
	}

	empty := &ContactData{}
	if got := empty.InstanceID(); got != "" {
		t.Errorf("InstanceID() on empty ARN = %q, want empty", got)
	}
}
