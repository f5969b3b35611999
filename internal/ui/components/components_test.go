package components

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
)

func press(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestSelectCycles(t *testing.T) {
	s := NewSelect("UNIT", []string{"-", "1 SIR", "2 SIR"})
	s, _ = s.Update(press(tea.KeyRight))
	if s.Value() != "-" {
		t.Fatalf("unfocused select changed to %q", s.Value())
	}

	s.Focused = true
	s, _ = s.Update(press(tea.KeyRight))
	if s.Value() != "1 SIR" {
		t.Fatalf("after right = %q, want 1 SIR", s.Value())
	}
	s, _ = s.Update(press(tea.KeyLeft))
	s, _ = s.Update(press(tea.KeyLeft))
	if s.Value() != "2 SIR" {
		t.Fatalf("left should wrap, got %q", s.Value())
	}
	if !strings.Contains(s.View(), "2 SIR") {
		t.Fatalf("view missing value: %q", s.View())
	}
}

func TestMenuSkipsDisabled(t *testing.T) {
	called := ""
	m := NewMenu([]MenuItem{
		{Label: "A", Disabled: true},
		{Label: "B", Action: func() tea.Cmd { called = "B"; return nil }},
		{Label: "C", Disabled: true},
		{Label: "D", Action: func() tea.Cmd { called = "D"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("initial selection = %d, want 1", m.Selected)
	}
	m, _ = m.Update(press(tea.KeyDown))
	if m.Selected != 3 {
		t.Fatalf("down should skip disabled, got %d", m.Selected)
	}
	m.Update(press(tea.KeyEnter))
	if called != "D" {
		t.Fatalf("enter ran %q, want D", called)
	}
}

func TestNumberInputDropsLetters(t *testing.T) {
	ti := NewNumberInput("score", 2)
	ti.Focus()
	ti, _ = ti.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	ti, _ = ti.Update(tea.KeyPressMsg{Code: '7', Text: "7"})
	if ti.Value() != "7" {
		t.Fatalf("value = %q, want 7", ti.Value())
	}
	if n, err := ti.Number(); err != nil || n != 7 {
		t.Fatalf("Number = %d, %v", n, err)
	}
}

func TestTextInputMarkClearsOnTyping(t *testing.T) {
	ti := NewNumberInput("score", 2)
	ti.Focus()
	ti.Mark(false)
	if !strings.Contains(ti.View(), "✗") {
		t.Fatalf("marked field should show a cross: %q", ti.View())
	}
	ti, _ = ti.Update(tea.KeyPressMsg{Code: '1', Text: "1"})
	if strings.Contains(ti.View(), "✗") {
		t.Fatal("typing should clear the mark")
	}
}

func TestMenuWrapsAndShowsTags(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "q1", Tag: "[image saved]"}, {Label: "q2"}})
	m, _ = m.Update(press(tea.KeyUp))
	if m.Selected != 1 {
		t.Fatalf("up from the top should wrap, got %d", m.Selected)
	}
	m, _ = m.Update(press(tea.KeyHome))
	if m.Selected != 0 {
		t.Fatalf("home = %d, want 0", m.Selected)
	}
	if !strings.Contains(m.View(), "[image saved]") {
		t.Fatalf("view missing tag: %q", m.View())
	}
}

func TestButtonShowsKey(t *testing.T) {
	if v := NewButton("Enter", "Finish").View(); !strings.Contains(v, "[Enter] Finish") {
		t.Fatalf("button view = %q", v)
	}
}

func TestCountdown(t *testing.T) {
	c := Countdown{Remaining: 75 * time.Second, Total: 90 * time.Second, Width: 30, Warn: 10 * time.Second}
	if !strings.Contains(c.View(), "T 1:15") {
		t.Fatalf("countdown view = %q", c.View())
	}
	if f := c.fraction(); f < 0.83 || f > 0.84 {
		t.Fatalf("fraction = %v", f)
	}
	c.Remaining = -time.Second
	if !strings.Contains(c.View(), "T 0:00") || c.fraction() != 0 {
		t.Fatalf("expired countdown = %q", c.View())
	}
}
