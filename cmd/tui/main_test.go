package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"seqview/internal/format"
	"seqview/internal/loader"
	"seqview/internal/section"
)

type recorder struct {
	got []section.Section
}

func (r *recorder) Render(secs []section.Section) error {
	r.got = secs
	return nil
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func step(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func loaded(t *testing.T) model {
	t.Helper()
	m := initialModel(nil)
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return step(t, m, sectionsMsg{sections: []section.Section{
		section.New("seq1", "ACGT"),
		section.NewLines("features", []string{"  CDS 1..10", "  gene 1..4"}),
	}})
}

func TestSectionsMsgSelectsFirst(t *testing.T) {
	m := loaded(t)
	if len(m.list.Items()) != 2 {
		t.Fatalf("expected 2 items, got %d", len(m.list.Items()))
	}
	if m.current != 0 || m.editor.Value() != "ACGT" {
		t.Fatalf("expected first section in editor, got %d %q", m.current, m.editor.Value())
	}
}

func TestNavigateShowsLineSection(t *testing.T) {
	m := loaded(t)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.current != 1 {
		t.Fatalf("expected second section, got %d", m.current)
	}
	if m.editor.Value() != "  CDS 1..10\n  gene 1..4" {
		t.Fatalf("unexpected editor text %q", m.editor.Value())
	}
}

func TestEditsSurviveNavigation(t *testing.T) {
	m := loaded(t)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.editor.Focused() {
		t.Fatalf("expected editor focus after tab")
	}
	m = step(t, m, keys("X"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.editor.Focused() {
		t.Fatalf("expected list focus after esc")
	}
	if got := m.edits[0]; got != "ACGTX" {
		t.Fatalf("expected stashed edit, got %q", got)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.editor.Value() != "ACGTX" {
		t.Fatalf("expected edit restored, got %q", m.editor.Value())
	}
	if !strings.Contains(m.View(), "(edited)") {
		t.Fatalf("expected edited marker in view")
	}

	// a new render replaces everything, edits included
	m = step(t, m, sectionsMsg{sections: []section.Section{section.New("other", "GG")}})
	if len(m.edits) != 0 || m.editor.Value() != "GG" {
		t.Fatalf("expected fresh state, got edits=%v value=%q", m.edits, m.editor.Value())
	}
}

func TestQuitAndHelp(t *testing.T) {
	m := loaded(t)
	m = step(t, m, keys("h"))
	if !m.showHelp || !strings.Contains(m.View(), "seqview - Help") {
		t.Fatalf("expected help modal")
	}
	_, cmd := m.Update(keys("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestErrorShownInView(t *testing.T) {
	m := loaded(t)
	m = step(t, m, errMsg{err: errors.New("boom")})
	if !strings.Contains(m.View(), "Error: boom") {
		t.Fatalf("expected error in view")
	}
}

func TestLoadCmdRendersAndReports(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rec.gb")
	if err := os.WriteFile(p, []byte("LOCUS x\nFEATURES\n  CDS 1..10\nORIGIN\nATGC\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	msg := loadCmd(loader.New(loader.Options{}), p, rec)()
	lm, ok := msg.(loadedMsg)
	if !ok {
		t.Fatalf("expected loadedMsg, got %#v", msg)
	}
	if lm.name != "rec.gb" || lm.kind != format.GenBank {
		t.Fatalf("unexpected loadedMsg %+v", lm)
	}
	if len(rec.got) != 3 {
		t.Fatalf("expected 3 rendered sections, got %d", len(rec.got))
	}

	msg = loadCmd(loader.New(loader.Options{}), filepath.Join(t.TempDir(), "missing.fa"), rec)()
	if _, ok := msg.(errMsg); !ok {
		t.Fatalf("expected errMsg, got %#v", msg)
	}
}

func TestProgramRendererRequiresProgram(t *testing.T) {
	if err := (&programRenderer{}).Render(nil); err == nil {
		t.Fatalf("expected error without a program")
	}
}
