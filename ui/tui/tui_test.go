package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Fettser/diplom-deploy/domain/restore"
	"github.com/Fettser/diplom-deploy/ui/presenter"
)

func sampleResult() *restore.Result {
	return &restore.Result{
		Matrix: [][]restore.Point{
			{{0, 0, -1}, {1, 0, 0}, {2, 0, 1}},
			{{0, 1, 0}, {1, 1, 0.5}, {2, 1, 1}},
		},
		Peaks: restore.Peaks{Min: -1, Max: 1},
	}
}

func TestRestoreModel_SuccessShowsHeatMap(t *testing.T) {
	m := NewRestoreModel("fringe.png", func(context.Context) (*restore.Result, error) {
		return sampleResult(), nil
	}, time.Second)
	cmd := m.begin()
	if cmd == nil {
		t.Fatal("first submission refused")
	}
	if m.Status() != presenter.StatusLoading {
		t.Fatalf("status %v, want loading", m.Status())
	}
	if !strings.Contains(m.View(), "Restoring...") {
		t.Fatalf("loading view %q", m.View())
	}
	if m.begin() != nil {
		t.Fatal("second submission accepted while loading")
	}
	m.Update(cmd())
	if m.Status() != presenter.StatusSurface {
		t.Fatalf("status %v, want surface", m.Status())
	}
	view := m.View()
	if !strings.Contains(view, "3 x 2 points") {
		t.Fatalf("surface view %q", view)
	}
}

func TestRestoreModel_FailureAndStaleReply(t *testing.T) {
	calls := 0
	m := NewRestoreModel("fringe.png", func(context.Context) (*restore.Result, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return sampleResult(), nil
	}, 0)
	first := m.begin()
	firstMsg := first()
	m.Update(firstMsg)
	if m.Status() != presenter.StatusError {
		t.Fatalf("status %v, want error", m.Status())
	}
	if !strings.Contains(m.View(), "boom") {
		t.Fatalf("error view %q", m.View())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("retry refused")
	}
	m.Update(firstMsg)
	if m.Status() != presenter.StatusLoading {
		t.Fatalf("stale reply changed status to %v", m.Status())
	}
	m.Update(cmd())
	if m.Status() != presenter.StatusSurface {
		t.Fatalf("status %v, want surface", m.Status())
	}
}

func TestRestoreModel_PanicBecomesError(t *testing.T) {
	m := NewRestoreModel("x.png", func(context.Context) (*restore.Result, error) {
		panic("bad")
	}, 0)
	m.Update(m.begin()())
	if m.Status() != presenter.StatusError {
		t.Fatalf("status %v, want error", m.Status())
	}
}

func TestRestoreModel_QuitCancels(t *testing.T) {
	m := NewRestoreModel("x.png", func(ctx context.Context) (*restore.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, 0)
	cmd := m.begin()
	_, quit := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if quit == nil {
		t.Fatal("no quit command")
	}
	msg := cmd().(resultMsg)
	if !errors.Is(msg.err, context.Canceled) {
		t.Fatalf("err %v, want canceled", msg.err)
	}
	if m.View() != "" {
		t.Fatal("view after quit not empty")
	}
}

func TestHeatMap_Shape(t *testing.T) {
	out := HeatMap(sampleResult(), 10, 10)
	if got := strings.Count(out, "\n") + 1; got != 2 {
		t.Fatalf("rows %d, want 2", got)
	}
	if HeatMap(nil, 10, 10) != "" || HeatMap(sampleResult(), 0, 5) != "" {
		t.Fatal("expected empty heat map")
	}
	if !strings.Contains(Legend(sampleResult()), "-1 .. 1") {
		t.Fatalf("legend %q", Legend(sampleResult()))
	}
}
