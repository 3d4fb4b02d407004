package errors

import (
	"strings"
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "numpy", false},
		{"valid with dash", "oemof-tabular", false},
		{"valid with dots", "ruamel.yaml", false},
		{"empty", "", true},
		{"path traversal", "../etc/passwd", true},
		{"double slash", "foo//bar", true},
		{"backslash", `foo\bar`, true},
		{"control character", "foo\x01bar", true},
		{"null byte", "foo\x00bar", true},
		{"too long", strings.Repeat("a", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDistributionName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"requests", false},
		{"oemof.solph", false},
		{"scikit-learn", false},
		{"snake_case_pkg", false},
		{"A", false},
		{"-leading-dash", true},
		{"trailing-dash-", true},
		{"has space", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateDistributionName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDistributionName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateExtraName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"docs", false},
		{"preprocessing", false},
		{"dev-tools", false},
		{"x", false},
		{"", true},
		{"-docs", true},
		{"docs!", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateExtraName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExtraName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAuthor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Jane Doe <jane@example.org>", false},
		{"valid with middle name", "Jan van der Berg <jan@example.nl>", false},
		{"missing email", "Jane Doe", true},
		{"missing name", "<jane@example.org>", true},
		{"bare email", "jane@example.org", true},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"malformed angle brackets", "Jane Doe <jane@", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAuthor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAuthor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidAuthor {
				t.Errorf("ValidateAuthor(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidAuthor)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "scenarios/base.yml", false},
		{"valid nested", "results/base/preprocessed", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "foo/../../etc", true},
		{"backslash", `foo\bar`, true},
		{"too long", strings.Repeat("a/", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://pypi.org/simple"); err != nil {
		t.Errorf("ValidateURL(https) error = %v", err)
	}
	if err := ValidateURL("ftp://example.org"); err == nil {
		t.Error("ValidateURL(ftp) should fail")
	}
	if err := ValidateURL(""); err == nil {
		t.Error("ValidateURL(empty) should fail")
	}
}
