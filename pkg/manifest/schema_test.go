package manifest

import (
	"strings"
	"testing"
)

func TestValidateSchema_Valid(t *testing.T) {
	result, err := ValidateSchema([]byte(cleanManifest))
	if err != nil {
		t.Fatalf("ValidateSchema failed: %v", err)
	}
	if !result.Valid {
		t.Errorf("clean manifest should pass schema validation, issues: %+v", result.Issues)
	}
}

func TestValidateSchema_MissingRequired(t *testing.T) {
	data := strings.Replace(cleanManifest, "name = \"oemof-b3\"\n", "", 1)
	result, err := ValidateSchema([]byte(data))
	if err != nil {
		t.Fatalf("ValidateSchema failed: %v", err)
	}
	if result.Valid {
		t.Fatal("manifest without a name should fail schema validation")
	}
	if len(result.Issues) == 0 {
		t.Fatal("expected at least one issue")
	}
}

func TestValidateSchema_WrongTypes(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			"line-length as string",
			strings.Replace(cleanManifest, "line-length = 80", `line-length = "eighty"`, 1),
		},
		{
			"zero line-length",
			strings.Replace(cleanManifest, "line-length = 80", "line-length = 0", 1),
		},
		{
			"requires as string",
			strings.Replace(cleanManifest, `requires = ["poetry-core>=1.0.0"]`, `requires = "poetry-core"`, 1),
		},
		{
			"extras as string",
			strings.Replace(cleanManifest, `docs = ["sphinx"]`, `docs = "sphinx"`, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateSchema([]byte(tt.data))
			if err != nil {
				t.Fatalf("ValidateSchema failed: %v", err)
			}
			if result.Valid {
				t.Error("malformed manifest should fail schema validation")
			}
		})
	}
}

func TestValidateSchema_SyntaxError(t *testing.T) {
	if _, err := ValidateSchema([]byte("[broken")); err == nil {
		t.Error("TOML syntax errors should be returned as errors")
	}
}

func TestValidateSchema_IssuePaths(t *testing.T) {
	data := strings.Replace(cleanManifest, "line-length = 80", "line-length = 0", 1)
	result, err := ValidateSchema([]byte(data))
	if err != nil {
		t.Fatalf("ValidateSchema failed: %v", err)
	}
	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue.Path, "black") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an issue path pointing at tool/black, got %+v", result.Issues)
	}
}
