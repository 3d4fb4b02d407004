package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/projlint/projlint/pkg/manifest"
)

const extrasManifest = `
[tool.poetry]
name = "demo"
version = "0.1.0"
authors = ["Jane Doe <jane@example.org>"]

[tool.poetry.dependencies]
python = ">=3.8"
sphinx = {version = "^4.0", optional = true}
pytest = {version = "^6.0", optional = true}

[tool.poetry.extras]
docs = ["sphinx"]
test = ["pytest"]

[build-system]
requires = ["poetry-core"]
build-backend = "poetry.core.masonry.api"
`

func newExtrasModel(t *testing.T) ExtrasListModel {
	t.Helper()
	m, err := manifest.Parse([]byte(extrasManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return NewExtrasListModel(m)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExtrasListModelGroups(t *testing.T) {
	model := newExtrasModel(t)

	if len(model.Groups) != 2 {
		t.Fatalf("Groups = %d, want 2", len(model.Groups))
	}
	// Groups are sorted by name.
	if model.Groups[0].Name != "docs" || model.Groups[1].Name != "test" {
		t.Errorf("group order = %s, %s; want docs, test", model.Groups[0].Name, model.Groups[1].Name)
	}
}

func TestExtrasListModelToggleAndConfirm(t *testing.T) {
	model := newExtrasModel(t)

	// Toggle the first group, move down, confirm.
	next, _ := model.Update(key(" "))
	model = next.(ExtrasListModel)
	next, _ = model.Update(key("j"))
	model = next.(ExtrasListModel)
	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = next.(ExtrasListModel)

	if !model.Confirmed {
		t.Fatal("enter should confirm the selection")
	}
	selected := model.Selected()
	if len(selected) != 1 || selected[0] != "docs" {
		t.Errorf("Selected() = %v, want [docs]", selected)
	}
}

func TestExtrasListModelSelectAll(t *testing.T) {
	model := newExtrasModel(t)

	next, _ := model.Update(key("a"))
	model = next.(ExtrasListModel)
	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = next.(ExtrasListModel)

	if got := model.Selected(); len(got) != 2 {
		t.Errorf("Selected() = %v, want both groups", got)
	}
}

func TestExtrasListModelQuitWithoutConfirm(t *testing.T) {
	model := newExtrasModel(t)

	next, cmd := model.Update(key("q"))
	model = next.(ExtrasListModel)

	if cmd == nil {
		t.Fatal("q should quit")
	}
	if model.Confirmed {
		t.Error("quit should not confirm")
	}
	if model.Selected() != nil {
		t.Error("unconfirmed selection should be nil")
	}
}
