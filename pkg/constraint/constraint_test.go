package constraint

import (
	"testing"

	"github.com/projlint/projlint/pkg/errors"
)

func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		spec string
		want Kind
	}{
		{"1.2.3", KindExact},
		{"==1.2.3", KindExact},
		{"=1.2.3", KindExact},
		{"===2021.1", KindExact},
		{"^1.2.3", KindCaret},
		{"^0.4", KindCaret},
		{"~1.2.3", KindTilde},
		{"~=1.2.3", KindTilde},
		{"~=1.2", KindCaret},
		{">=1.2", KindBound},
		{"<2.0", KindBound},
		{"!=1.4.0", KindBound},
		{">=1.2,<2.0", KindRange},
		{">=1.2, <2.0, !=1.5.0", KindRange},
		{"*", KindWildcard},
		{"1.2.*", KindWildcard},
		{"==1.2.*", KindWildcard},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			c, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.spec, err)
			}
			if c.Kind() != tt.want {
				t.Errorf("Kind() = %v, want %v", c.Kind(), tt.want)
			}
			if c.String() != tt.spec {
				t.Errorf("String() = %q, want %q", c.String(), tt.spec)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"   ",
		">=1.2,,<2.0",
		"~=",
		"~=1",
		"not a version",
		">=abc",
	}

	for _, spec := range tests {
		t.Run(spec, func(t *testing.T) {
			_, err := Parse(spec)
			if err == nil {
				t.Fatalf("Parse(%q) should fail", spec)
			}
			if !errors.Is(err, errors.ErrCodeInvalidConstraint) {
				t.Errorf("Parse(%q) code = %v, want INVALID_CONSTRAINT", spec, errors.GetCode(err))
			}
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		spec    string
		version string
		want    bool
	}{
		{"1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", false},
		{"==1.22", "1.22.0", true},
		{"^1.2.3", "1.9.0", true},
		{"^1.2.3", "2.0.0", false},
		{"^0.2.3", "0.2.9", true},
		{"^0.2.3", "0.3.0", false},
		{"~1.2.3", "1.2.9", true},
		{"~1.2.3", "1.3.0", false},
		{"~=1.2.3", "1.2.9", true},
		{"~=1.2.3", "1.3.0", false},
		{"~=1.2", "1.9.0", true},
		{"~=1.2", "2.0.0", false},
		// Compatible release on a zero major still spans to the next major.
		{"~=0.2", "0.3.0", true},
		{"~=0.2", "0.9.5", true},
		{"~=0.2", "1.0.0", false},
		{"~=0.2", "0.1.0", false},
		{">=1.2,<2.0", "1.5.0", true},
		{">=1.2,<2.0", "2.0.0", false},
		{">=1.2,<2.0,!=1.5.0", "1.5.0", false},
		{"*", "0.0.1", true},
		{"1.2.*", "1.2.11", true},
		{"1.2.*", "1.3.0", false},
		{"==1.2.*", "1.2.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec+"/"+tt.version, func(t *testing.T) {
			c := MustParse(tt.spec)
			got, err := c.Check(tt.version)
			if err != nil {
				t.Fatalf("Check(%q) error: %v", tt.version, err)
			}
			if got != tt.want {
				t.Errorf("Check(%q) against %q = %v, want %v", tt.version, tt.spec, got, tt.want)
			}
		})
	}
}

func TestCheck_InvalidVersion(t *testing.T) {
	c := MustParse(">=1.0")
	if _, err := c.Check("not-a-version"); err == nil {
		t.Error("Check with malformed version should fail")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(">=0.4,<0.5"); err != nil {
		t.Errorf("Validate(valid) error: %v", err)
	}
	if err := Validate("~~1.0"); err == nil {
		t.Error("Validate(invalid) should fail")
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		KindExact:    "exact",
		KindCaret:    "caret",
		KindTilde:    "tilde",
		KindBound:    "bound",
		KindRange:    "range",
		KindWildcard: "wildcard",
		Kind(99):     "unknown",
	}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}
