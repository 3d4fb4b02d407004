package manifest

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/projlint/projlint/pkg/constraint"
	"github.com/projlint/projlint/pkg/errors"
)

// Severity classifies how serious a lint issue is.
type Severity string

const (
	// SeverityError marks issues that make the manifest invalid.
	SeverityError Severity = "error"
	// SeverityWarning marks issues that are suspicious but not fatal.
	SeverityWarning Severity = "warning"
)

// Issue is a single lint finding.
type Issue struct {
	Code     errors.Code `json:"code"`
	Severity Severity    `json:"severity"`
	Path     string      `json:"path,omitempty"` // manifest location, e.g. "tool.poetry.dependencies.numpy"
	Message  string      `json:"message"`
}

// Report is the result of linting one manifest.
type Report struct {
	ID           string    `json:"id"`
	ManifestPath string    `json:"manifest_path,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
	Issues       []Issue   `json:"issues"`
}

// add appends an issue to the report.
func (r *Report) add(code errors.Code, sev Severity, path, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Code:     code,
		Severity: sev,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errors returns the number of error-severity issues.
func (r *Report) Errors() int { return r.count(SeverityError) }

// Warnings returns the number of warning-severity issues.
func (r *Report) Warnings() int { return r.count(SeverityWarning) }

// HasErrors reports whether the manifest failed validation.
func (r *Report) HasErrors() bool { return r.Errors() > 0 }

func (r *Report) count(sev Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// LintFile loads the manifest at path and lints it.
// Parse failures (unreadable file, TOML syntax) are returned as an error;
// everything else lands in the report.
func LintFile(path string) (*Report, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Lint(m), nil
}

// Lint validates a parsed manifest and returns a report.
//
// The checks cover the verifiable manifest properties:
//  1. the manifest matches the expected shape (JSON-Schema validation),
//  2. every dependency version constraint is syntactically valid,
//  3. extras reference only declared optional dependencies,
//  4. the author list is non-empty and each entry has a "Name <email>" shape,
//  5. the formatter line length is positive and exclusion patterns compile.
func Lint(m *Manifest) *Report {
	r := &Report{
		ID:           uuid.NewString(),
		ManifestPath: m.path,
		GeneratedAt:  time.Now().UTC(),
	}

	lintSchema(m, r)
	lintIdentity(m, r)
	lintBuildSystem(m, r)
	lintDependencies(m, r)
	lintExtras(m, r)
	lintAuthors(m, r)
	lintFormat(m, r)

	return r
}

func lintSchema(m *Manifest, r *Report) {
	if len(m.raw) == 0 {
		return
	}
	result, err := ValidateSchema(m.raw)
	if err != nil {
		r.add(errors.ErrCodeInternal, SeverityError, "", "schema validation failed: %v", err)
		return
	}
	for _, issue := range result.Issues {
		r.add(errors.ErrCodeInvalidManifest, SeverityError, issue.Path, "%s", issue.Message)
	}
}

func lintIdentity(m *Manifest, r *Report) {
	if m.Project.Name == "" {
		r.add(errors.ErrCodeInvalidManifest, SeverityError, "project.name", "package name is missing")
	} else if err := errors.ValidateDistributionName(m.Project.Name); err != nil {
		r.add(errors.ErrCodeInvalidPackage, SeverityError, "project.name", "%s", errors.UserMessage(err))
	}

	if m.Project.Version == "" {
		r.add(errors.ErrCodeInvalidManifest, SeverityError, "project.version", "package version is missing")
	} else if c, err := constraint.Parse(m.Project.Version); err != nil {
		r.add(errors.ErrCodeInvalidManifest, SeverityError, "project.version", "version does not parse: %s", errors.UserMessage(err))
	} else if c.Kind() != constraint.KindExact {
		r.add(errors.ErrCodeInvalidManifest, SeverityError, "project.version", "version must be an exact pin, got %s %q", c.Kind(), m.Project.Version)
	}
}

func lintBuildSystem(m *Manifest, r *Report) {
	if m.BuildSystem.Backend == "" && len(m.BuildSystem.Requires) == 0 {
		r.add(errors.ErrCodeInvalidManifest, SeverityWarning, "build-system", "no build-system table declared")
		return
	}

	if m.BuildSystem.Backend == "" {
		r.add(errors.ErrCodeInvalidManifest, SeverityError, "build-system.build-backend", "build backend is missing")
	}
	if len(m.BuildSystem.Requires) == 0 {
		r.add(errors.ErrCodeInvalidManifest, SeverityError, "build-system.requires", "build requirements are missing")
	}

	for i, req := range m.BuildSystem.Requires {
		path := fmt.Sprintf("build-system.requires[%d]", i)
		name, spec := splitRequirement(req)
		if name == "" {
			r.add(errors.ErrCodeInvalidPackage, SeverityError, path, "unparseable build requirement %q", req)
			continue
		}
		if spec == "" {
			r.add(errors.ErrCodeInvalidConstraint, SeverityWarning, path, "build requirement %q has no minimum version", name)
			continue
		}
		if err := constraint.Validate(spec); err != nil {
			r.add(errors.ErrCodeInvalidConstraint, SeverityError, path, "%s", errors.UserMessage(err))
		}
	}
}

func lintDependencies(m *Manifest, r *Report) {
	lintDepTable(m.DependencyNames(), m.Dependencies, "dependencies", r)
	lintDepTable(m.DevDependencyNames(), m.DevDependencies, "dev-dependencies", r)

	if m.RequiresPython != "" {
		if err := constraint.Validate(m.RequiresPython); err != nil {
			r.add(errors.ErrCodeInvalidConstraint, SeverityError, "dependencies.python", "%s", errors.UserMessage(err))
		}
	}
}

func lintDepTable(names []string, deps map[string]Dependency, table string, r *Report) {
	for _, name := range names {
		dep := deps[name]
		path := table + "." + name

		if err := errors.ValidateDistributionName(name); err != nil {
			r.add(errors.ErrCodeInvalidPackage, SeverityError, path, "%s", errors.UserMessage(err))
		}

		switch {
		case dep.Git != "":
			if err := errors.ValidateURL(dep.Git); err != nil {
				r.add(errors.ErrCodeInvalidInput, SeverityError, path, "git dependency: %s", errors.UserMessage(err))
			}
		case dep.Spec == "":
			r.add(errors.ErrCodeInvalidConstraint, SeverityWarning, path, "dependency %q has no version constraint", name)
		default:
			if err := constraint.Validate(dep.Spec); err != nil {
				r.add(errors.ErrCodeInvalidConstraint, SeverityError, path, "%s", errors.UserMessage(err))
			}
		}
	}
}

func lintExtras(m *Manifest, r *Report) {
	for _, group := range m.ExtraNames() {
		groupPath := "extras." + group
		if err := errors.ValidateExtraName(group); err != nil {
			r.add(errors.ErrCodeInvalidExtra, SeverityError, groupPath, "%s", errors.UserMessage(err))
		}

		seen := make(map[string]bool)
		for _, member := range m.Extras[group] {
			memberPath := groupPath + "." + member
			if seen[member] {
				r.add(errors.ErrCodeInvalidExtra, SeverityWarning, memberPath, "duplicate member %q", member)
				continue
			}
			seen[member] = true

			dep, declared := m.Dependencies[member]
			if !declared {
				r.add(errors.ErrCodeInvalidExtra, SeverityError, memberPath,
					"extras group %q references undeclared dependency %q", group, member)
				continue
			}
			if !dep.Optional {
				r.add(errors.ErrCodeInvalidExtra, SeverityError, memberPath,
					"extras group %q references dependency %q which is not marked optional", group, member)
			}
		}
	}
}

func lintAuthors(m *Manifest, r *Report) {
	if len(m.Project.RawAuthors) == 0 {
		r.add(errors.ErrCodeInvalidAuthor, SeverityError, "project.authors", "author list is empty")
		return
	}
	for i, raw := range m.Project.RawAuthors {
		if err := errors.ValidateAuthor(raw); err != nil {
			r.add(errors.ErrCodeInvalidAuthor, SeverityError,
				fmt.Sprintf("project.authors[%d]", i), "%s", errors.UserMessage(err))
		}
	}
}

func lintFormat(m *Manifest, r *Report) {
	if !m.Format.Declared {
		return
	}

	// A line length of zero means the key was absent; the schema rejects an
	// explicit zero.
	if m.Format.LineLength < 0 {
		r.add(errors.ErrCodeInvalidTool, SeverityError, "tool.format.line-length",
			"line length must be a positive integer, got %d", m.Format.LineLength)
	}

	for i, pattern := range m.Format.Exclude {
		if _, err := regexp.Compile(pattern); err != nil {
			r.add(errors.ErrCodeInvalidTool, SeverityError,
				fmt.Sprintf("tool.format.exclude[%d]", i), "exclusion pattern does not compile: %v", err)
		}
	}
}
