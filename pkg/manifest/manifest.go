// Package manifest parses and validates package manifests.
//
// A manifest is the declarative TOML file describing a project's metadata,
// dependencies, and build configuration. Two layouts are accepted: the
// [tool.poetry] layout and the [project] (PEP 621) layout. When both are
// present the poetry tables take precedence.
//
// Parsing happens once; the resulting Manifest is immutable and safe for
// concurrent reads. Validation is a separate step (see Lint), so callers can
// inspect a structurally parseable manifest even when it carries semantic
// problems.
package manifest

import (
	"net/mail"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/projlint/projlint/pkg/errors"
)

// Author is a parsed "Name <email>" entry from the manifest's author list.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// String formats the author in the canonical "Name <email>" shape.
func (a Author) String() string {
	if a.Email == "" {
		return a.Name
	}
	return a.Name + " <" + a.Email + ">"
}

// ParseAuthor parses a "Name <email>" string into an Author.
func ParseAuthor(s string) (Author, error) {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return Author{}, errors.Wrap(errors.ErrCodeInvalidAuthor, err, "author must have the shape %q", "Name <email>")
	}
	return Author{Name: addr.Name, Email: addr.Address}, nil
}

// Project holds the manifest's identity block.
type Project struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	License     string   `json:"license,omitempty"`
	Authors     []Author `json:"authors"`

	// RawAuthors preserves the author entries exactly as written, for
	// validation and round-tripping. Entries that fail to parse still
	// appear here.
	RawAuthors []string `json:"-"`
}

// BuildSystem describes the declared packaging backend.
type BuildSystem struct {
	// Requires lists the build requirements, typically the backend package
	// with a minimum-version constraint (e.g., "poetry-core>=1.0.0").
	Requires []string `json:"requires"`
	// Backend is the build-backend entry point (e.g., "poetry.core.masonry.api").
	Backend string `json:"backend"`
}

// Dependency is a single declared dependency.
type Dependency struct {
	Name string `json:"name"`
	// Spec is the version-constraint string. Empty for source dependencies
	// that pin a git reference instead of a version.
	Spec string `json:"spec,omitempty"`
	// Git is the repository URL for dependencies fetched from source.
	Git string `json:"git,omitempty"`
	// Branch is the git reference, when given.
	Branch string `json:"branch,omitempty"`
	// Optional marks dependencies that are only installed via an extras group.
	Optional bool `json:"optional,omitempty"`
}

// Format holds the code-formatter tool configuration.
type Format struct {
	// LineLength is the maximum line length. Zero means unset.
	LineLength int `json:"line_length,omitempty"`
	// Exclude lists path-regex fragments excluded from formatting.
	Exclude []string `json:"exclude,omitempty"`
	// Declared reports whether a formatter table was present at all.
	Declared bool `json:"-"`
}

// Manifest is the parsed, immutable model of a package manifest.
type Manifest struct {
	Project     Project     `json:"project"`
	BuildSystem BuildSystem `json:"build_system"`

	// RequiresPython is the interpreter constraint (poetry's "python" entry),
	// kept apart from package dependencies.
	RequiresPython string `json:"requires_python,omitempty"`

	// Dependencies maps dependency name to its declaration.
	Dependencies map[string]Dependency `json:"dependencies"`

	// DevDependencies maps development-only dependency name to its declaration.
	DevDependencies map[string]Dependency `json:"dev_dependencies"`

	// Extras maps an extras group name to the dependency names it installs.
	Extras map[string][]string `json:"extras"`

	// Format is the formatter tool configuration.
	Format Format `json:"format"`

	path string
	raw  []byte
}

// Path returns the file path the manifest was loaded from, if any.
func (m *Manifest) Path() string { return m.path }

// Raw returns the original manifest bytes for schema-level validation.
func (m *Manifest) Raw() []byte { return m.raw }

// DependencyNames returns the required dependency names in sorted order.
func (m *Manifest) DependencyNames() []string {
	return sortedKeys(m.Dependencies)
}

// DevDependencyNames returns the dev dependency names in sorted order.
func (m *Manifest) DevDependencyNames() []string {
	return sortedKeys(m.DevDependencies)
}

// ExtraNames returns the extras group names in sorted order.
func (m *Manifest) ExtraNames() []string {
	names := make([]string, 0, len(m.Extras))
	for name := range m.Extras {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(deps map[string]Dependency) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads and parses the manifest file at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "reading manifest %s", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.path = path
	return m, nil
}

// Parse decodes manifest bytes into a Manifest.
// It returns an error only for TOML syntax failures or when neither a
// [tool.poetry] nor a [project] table is present; semantic problems are
// left for Lint.
func Parse(data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "manifest is not valid TOML")
	}

	m := &Manifest{
		Dependencies:    map[string]Dependency{},
		DevDependencies: map[string]Dependency{},
		Extras:          map[string][]string{},
		raw:             data,
	}

	switch {
	case raw.Tool.Poetry != nil:
		raw.Tool.Poetry.apply(m)
	case raw.Project != nil:
		raw.Project.apply(m)
	default:
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest has neither [tool.poetry] nor [project] table")
	}

	// [tool.projlint.dev] declares dev dependencies for PEP 621 layouts,
	// which have no native dev table. Poetry dev tables take precedence.
	if raw.Tool.Projlint != nil {
		for name, value := range raw.Tool.Projlint.Dev {
			if _, exists := m.DevDependencies[name]; !exists {
				m.DevDependencies[name] = decodeDependency(name, value)
			}
		}
	}

	m.BuildSystem = BuildSystem{
		Requires: raw.BuildSystem.Requires,
		Backend:  raw.BuildSystem.Backend,
	}
	m.Format = raw.Tool.format()

	return m, nil
}

// NormalizeName converts a package name to its canonical form.
// Applies lowercase and collapses runs of ".", "-", and "_" to a single
// hyphen, following PEP 503 normalization rules used by package indexes.
func NormalizeName(name string) string {
	return normalizeRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

var normalizeRE = regexp.MustCompile(`[-_.]+`)

// =============================================================================
// Raw TOML layer
// =============================================================================

type rawManifest struct {
	Project     *rawProject    `toml:"project"`
	BuildSystem rawBuildSystem `toml:"build-system"`
	Tool        rawTool        `toml:"tool"`
}

type rawBuildSystem struct {
	Requires []string `toml:"requires"`
	Backend  string   `toml:"build-backend"`
}

type rawTool struct {
	Poetry   *rawPoetry   `toml:"poetry"`
	Projlint *rawProjlint `toml:"projlint"`
	Black    *rawFormat   `toml:"black"`
	Format   *rawFormat   `toml:"format"`
}

// rawProjlint is this tool's own manifest table.
type rawProjlint struct {
	Dev map[string]any `toml:"dev"`
}

// format prefers [tool.format] and falls back to [tool.black], which is the
// table real-world manifests carry.
func (t rawTool) format() Format {
	raw := t.Format
	if raw == nil {
		raw = t.Black
	}
	if raw == nil {
		return Format{}
	}
	return Format{
		LineLength: raw.LineLength,
		Exclude:    raw.excludePatterns(),
		Declared:   true,
	}
}

type rawFormat struct {
	LineLength int `toml:"line-length"`
	// Exclude may be a single regex string or a list of fragments.
	Exclude any `toml:"exclude"`
}

func (f *rawFormat) excludePatterns() []string {
	switch v := f.Exclude.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// =============================================================================
// Poetry layout
// =============================================================================

type rawPoetry struct {
	Name            string              `toml:"name"`
	Version         string              `toml:"version"`
	Description     string              `toml:"description"`
	License         string              `toml:"license"`
	Authors         []string            `toml:"authors"`
	Dependencies    map[string]any      `toml:"dependencies"`
	DevDependencies map[string]any      `toml:"dev-dependencies"`
	Group           map[string]rawGroup `toml:"group"`
	Extras          map[string][]string `toml:"extras"`
}

type rawGroup struct {
	Dependencies map[string]any `toml:"dependencies"`
}

func (p *rawPoetry) apply(m *Manifest) {
	m.Project = Project{
		Name:        p.Name,
		Version:     p.Version,
		Description: p.Description,
		License:     p.License,
		RawAuthors:  p.Authors,
	}
	for _, raw := range p.Authors {
		if a, err := ParseAuthor(raw); err == nil {
			m.Project.Authors = append(m.Project.Authors, a)
		}
	}

	for name, value := range p.Dependencies {
		if strings.EqualFold(name, "python") {
			m.RequiresPython = specString(value)
			continue
		}
		m.Dependencies[name] = decodeDependency(name, value)
	}

	for name, value := range p.DevDependencies {
		m.DevDependencies[name] = decodeDependency(name, value)
	}
	if dev, ok := p.Group["dev"]; ok {
		for name, value := range dev.Dependencies {
			m.DevDependencies[name] = decodeDependency(name, value)
		}
	}

	for group, members := range p.Extras {
		m.Extras[group] = append([]string(nil), members...)
	}
}

// decodeDependency interprets a poetry dependency value, which is either a
// bare constraint string or an inline table with version/git/branch/optional
// keys.
func decodeDependency(name string, value any) Dependency {
	dep := Dependency{Name: name}
	switch v := value.(type) {
	case string:
		dep.Spec = v
	case map[string]any:
		if s, ok := v["version"].(string); ok {
			dep.Spec = s
		}
		if s, ok := v["git"].(string); ok {
			dep.Git = s
		}
		if s, ok := v["branch"].(string); ok {
			dep.Branch = s
		}
		if b, ok := v["optional"].(bool); ok {
			dep.Optional = b
		}
	}
	return dep
}

func specString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["version"].(string); ok {
			return s
		}
	}
	return ""
}

// =============================================================================
// PEP 621 layout
// =============================================================================

type rawProject struct {
	Name                 string              `toml:"name"`
	Version              string              `toml:"version"`
	Description          string              `toml:"description"`
	RequiresPython       string              `toml:"requires-python"`
	Authors              []any               `toml:"authors"`
	Dependencies         []string            `toml:"dependencies"`
	OptionalDependencies map[string][]string `toml:"optional-dependencies"`
}

func (p *rawProject) apply(m *Manifest) {
	m.Project = Project{
		Name:        p.Name,
		Version:     p.Version,
		Description: p.Description,
	}
	m.RequiresPython = p.RequiresPython

	for _, entry := range p.Authors {
		switch v := entry.(type) {
		case string:
			m.Project.RawAuthors = append(m.Project.RawAuthors, v)
			if a, err := ParseAuthor(v); err == nil {
				m.Project.Authors = append(m.Project.Authors, a)
			}
		case map[string]any:
			a := Author{}
			if s, ok := v["name"].(string); ok {
				a.Name = s
			}
			if s, ok := v["email"].(string); ok {
				a.Email = s
			}
			m.Project.RawAuthors = append(m.Project.RawAuthors, a.String())
			if a.Name != "" || a.Email != "" {
				m.Project.Authors = append(m.Project.Authors, a)
			}
		}
	}

	for _, req := range p.Dependencies {
		name, spec := splitRequirement(req)
		if name == "" {
			continue
		}
		m.Dependencies[name] = Dependency{Name: name, Spec: spec}
	}

	// Under PEP 621 the optional-dependency groups are themselves the
	// optional declarations, so group members are registered as optional
	// dependencies.
	for group, members := range p.OptionalDependencies {
		names := make([]string, 0, len(members))
		for _, req := range members {
			name, spec := splitRequirement(req)
			if name == "" {
				continue
			}
			if _, exists := m.Dependencies[name]; !exists {
				m.Dependencies[name] = Dependency{Name: name, Spec: spec, Optional: true}
			}
			names = append(names, name)
		}
		m.Extras[group] = names
	}
}

var requirementNameRE = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)(?:\[[^\]]*\])?`)

// splitRequirement splits a PEP 508 requirement string ("numpy >=1.20,<2.0")
// into its distribution name and constraint part. Environment markers after
// ";" are dropped.
func splitRequirement(req string) (name, spec string) {
	if i := strings.Index(req, ";"); i >= 0 {
		req = req[:i]
	}
	match := requirementNameRE.FindStringSubmatch(req)
	if match == nil {
		return "", ""
	}
	name = match[1]
	spec = strings.TrimSpace(req[len(match[0]):])
	return name, spec
}
