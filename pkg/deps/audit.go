package deps

import (
	"github.com/projlint/projlint/pkg/constraint"
	"github.com/projlint/projlint/pkg/graph"
	"github.com/projlint/projlint/pkg/manifest"
)

// Finding reports how a declared constraint relates to the version the
// registry resolved for that package.
type Finding struct {
	Name     string `json:"name"`
	Spec     string `json:"spec"`
	Resolved string `json:"resolved,omitempty"`
	// Satisfied is true when the resolved version matches the spec.
	// It is false both for genuine mismatches and when Problem is set.
	Satisfied bool   `json:"satisfied"`
	Problem   string `json:"problem,omitempty"`
}

// Audit checks every direct dependency's declared constraint against the
// version recorded in the resolved graph. Dependencies without a version
// constraint (git sources) are skipped. Findings come back in the order
// the graph stores its nodes.
func Audit(m *manifest.Manifest, g *graph.Graph) []Finding {
	declared := make(map[string]string)
	for name, dep := range m.Dependencies {
		if dep.Spec != "" {
			declared[manifest.NormalizeName(name)] = dep.Spec
		}
	}
	for name, dep := range m.DevDependencies {
		if dep.Spec != "" {
			declared[manifest.NormalizeName(name)] = dep.Spec
		}
	}

	var findings []Finding
	for _, node := range g.Nodes() {
		spec, ok := declared[node.ID]
		if !ok {
			continue
		}
		f := Finding{Name: node.ID, Spec: spec}

		c, err := constraint.Parse(spec)
		if err != nil {
			f.Problem = "invalid constraint: " + err.Error()
			findings = append(findings, f)
			continue
		}

		version, _ := node.Meta["version"].(string)
		if version == "" {
			f.Problem = "no resolved version"
			findings = append(findings, f)
			continue
		}
		f.Resolved = version

		satisfied, err := c.Check(version)
		if err != nil {
			f.Problem = "unparseable version: " + err.Error()
		} else {
			f.Satisfied = satisfied
		}
		findings = append(findings, f)
	}
	return findings
}
