// Package constraint parses and evaluates dependency version constraints.
//
// The grammar covers the specifier styles found in Python-style project
// manifests: exact pins, caret ranges, tilde/compatible-release ranges,
// comparison bounds, and wildcards. Specifiers are normalized to semver
// constraint syntax and compiled with github.com/Masterminds/semver.
//
// Supported forms:
//
//	1.2.3        ==1.2.3      =1.2.3       exact pin
//	^1.2.3                                 caret range
//	~1.2.3       ~=1.2.3                   tilde / compatible release
//	>=1.2        <2.0         !=1.4.0      bounds
//	>=1.2,<2.0                             conjunction
//	*            1.2.*        ==1.2.*      wildcards
package constraint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/projlint/projlint/pkg/errors"
)

// Kind classifies the shape of a constraint.
type Kind int

const (
	// KindExact pins to a single version (e.g., "==1.2.3").
	KindExact Kind = iota
	// KindCaret allows changes within the leftmost non-zero component (e.g., "^1.2").
	KindCaret
	// KindTilde allows patch-level changes (e.g., "~1.2.3", "~=1.2.3").
	KindTilde
	// KindBound is a single comparison bound (e.g., ">=1.2").
	KindBound
	// KindRange is a conjunction of bounds (e.g., ">=1.2,<2.0").
	KindRange
	// KindWildcard matches a version prefix or anything (e.g., "*", "1.2.*").
	KindWildcard
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindCaret:
		return "caret"
	case KindTilde:
		return "tilde"
	case KindBound:
		return "bound"
	case KindRange:
		return "range"
	case KindWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Constraint is a parsed, immutable version constraint.
// It is safe for concurrent use after construction.
type Constraint struct {
	raw  string
	kind Kind
	set  *semver.Constraints
}

// Parse compiles a specifier string into a Constraint.
// Returns an error with code INVALID_CONSTRAINT if the specifier does not
// conform to the supported grammar.
func Parse(spec string) (*Constraint, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return nil, errors.New(errors.ErrCodeInvalidConstraint, "empty version constraint")
	}

	clauses := strings.Split(raw, ",")
	normalized := make([]string, 0, len(clauses))
	kinds := make([]Kind, 0, len(clauses))

	for _, clause := range clauses {
		norm, kind, err := normalizeClause(strings.TrimSpace(clause))
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, norm)
		kinds = append(kinds, kind)
	}

	set, err := semver.NewConstraint(strings.Join(normalized, ", "))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConstraint, err, "invalid version constraint %q", spec)
	}

	kind := kinds[0]
	if len(kinds) > 1 {
		kind = KindRange
	}

	return &Constraint{raw: raw, kind: kind, set: set}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// statically known specifiers.
func MustParse(spec string) *Constraint {
	c, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return c
}

// Check reports whether the given version satisfies the constraint.
// Returns an error if the version string itself cannot be parsed.
func (c *Constraint) Check(version string) (bool, error) {
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidConstraint, err, "invalid version %q", version)
	}
	return c.set.Check(v), nil
}

// Kind returns the constraint's classification.
func (c *Constraint) Kind() Kind { return c.kind }

// String returns the original specifier text.
func (c *Constraint) String() string { return c.raw }

// Validate reports whether a specifier string is syntactically valid.
// It is a convenience wrapper around Parse that discards the result.
func Validate(spec string) error {
	_, err := Parse(spec)
	return err
}

// normalizeClause rewrites a single specifier clause into semver constraint
// syntax and classifies it.
func normalizeClause(clause string) (string, Kind, error) {
	if clause == "" {
		return "", 0, errors.New(errors.ErrCodeInvalidConstraint, "empty constraint clause")
	}

	switch {
	case clause == "*":
		return "*", KindWildcard, nil

	case strings.HasPrefix(clause, "^"):
		return clause, KindCaret, nil

	case strings.HasPrefix(clause, "~="):
		return normalizeCompatibleRelease(clause)

	case strings.HasPrefix(clause, "~"):
		return clause, KindTilde, nil

	case strings.HasPrefix(clause, "==="):
		// Arbitrary equality: treated as an exact pin on the literal version.
		return "=" + strings.TrimSpace(clause[3:]), KindExact, nil

	case strings.HasPrefix(clause, "=="):
		rest := strings.TrimSpace(clause[2:])
		if strings.HasSuffix(rest, ".*") || strings.HasSuffix(rest, ".x") {
			return rest, KindWildcard, nil
		}
		return "=" + rest, KindExact, nil

	case strings.HasPrefix(clause, "!="), strings.HasPrefix(clause, ">="),
		strings.HasPrefix(clause, "<="):
		return clause, KindBound, nil

	case strings.HasPrefix(clause, ">"), strings.HasPrefix(clause, "<"):
		return clause, KindBound, nil

	case strings.HasPrefix(clause, "="):
		return clause, KindExact, nil

	case strings.HasSuffix(clause, ".*"), strings.HasSuffix(clause, ".x"):
		return clause, KindWildcard, nil

	default:
		// Bare version: an exact pin.
		return "=" + clause, KindExact, nil
	}
}

// normalizeCompatibleRelease maps PEP 440 "~=" onto semver range operators.
// "~=X.Y" means >=X.Y, <X+1.0; "~=X.Y.Z" means >=X.Y.Z, ==X.Y.* which is a
// tilde-style range.
func normalizeCompatibleRelease(clause string) (string, Kind, error) {
	version := strings.TrimSpace(strings.TrimPrefix(clause, "~="))
	if version == "" {
		return "", 0, errors.New(errors.ErrCodeInvalidConstraint, "incomplete compatible-release constraint %q", clause)
	}

	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return "", 0, errors.New(errors.ErrCodeInvalidConstraint,
			"compatible-release constraint needs at least two version components: %q", clause)
	}
	if len(parts) == 2 {
		// "~=X.Y" allows everything up to the next major release. The caret
		// shortcut only matches when X is non-zero ("^0.2" stops at 0.3.0),
		// so emit the bounds explicitly.
		major, err := strconv.Atoi(parts[0])
		if err != nil {
			return "", 0, errors.New(errors.ErrCodeInvalidConstraint,
				"invalid compatible-release constraint %q", clause)
		}
		return fmt.Sprintf(">=%s, <%d.0.0", version, major+1), KindCaret, nil
	}
	return "~" + version, KindTilde, nil
}
