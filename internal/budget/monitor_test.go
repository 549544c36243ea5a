package budget_test

import (
	"testing"
	"time"

	"github.com/codegraph-ai/agentic-core/internal/budget"
	"github.com/codegraph-ai/agentic-core/internal/domain"
)

func TestMonitor_stepBudget(t *testing.T) {
	m := budget.New(2, 0, time.Time{})
	if d := m.Check(); d.Stop {
		t.Fatalf("Check() = %+v, want Continue before any steps", d)
	}
	m.RecordStep()
	m.RecordStep()
	d := m.Check()
	if !d.Stop || d.Reason != domain.StepBudgetExhausted {
		t.Errorf("Check() = %+v, want Stop(StepBudgetExhausted)", d)
	}
}

func TestMonitor_tokenBudget(t *testing.T) {
	m := budget.New(100, 50, time.Time{})
	m.RecordTokens(30, 30)
	d := m.Check()
	if !d.Stop || d.Reason != domain.TokenBudgetExhausted {
		t.Errorf("Check() = %+v, want Stop(TokenBudgetExhausted)", d)
	}
	if m.TokensTotal() != 60 {
		t.Errorf("TokensTotal() = %d, want 60", m.TokensTotal())
	}
}

func TestMonitor_deadline(t *testing.T) {
	m := budget.New(100, 0, time.Now().Add(-time.Second))
	d := m.Check()
	if !d.Stop || d.Reason != domain.DeadlineExceeded {
		t.Errorf("Check() = %+v, want Stop(DeadlineExceeded)", d)
	}
}

func TestMonitor_cancellation(t *testing.T) {
	m := budget.New(100, 0, time.Time{})
	m.Cancel()
	d := m.Check()
	if !d.Stop || d.Reason != domain.Cancelled {
		t.Errorf("Check() = %+v, want Stop(Cancelled)", d)
	}
}

func TestMonitor_cancellationTakesPriority(t *testing.T) {
	m := budget.New(1, 0, time.Now().Add(-time.Second))
	m.Cancel()
	d := m.Check()
	if d.Reason != domain.Cancelled {
		t.Errorf("Check() = %+v, want Cancelled to take priority", d)
	}
}

func TestMonitor_repeatToolCallStreak(t *testing.T) {
	m := budget.New(100, 0, time.Time{})
	call := domain.ToolCallSpec{Name: domain.GetHubNodes, Params: map[string]any{"min_degree": float64(5)}}

	m.RecordToolCall(call)
	if m.ShouldNudge() {
		t.Error("ShouldNudge() = true after 1 call, want false")
	}
	m.RecordToolCall(call)
	if m.ShouldNudge() {
		t.Error("ShouldNudge() = true after 2 calls, want false")
	}
	m.RecordToolCall(call)
	if !m.ShouldNudge() {
		t.Error("ShouldNudge() = false after 3 identical calls, want true")
	}

	m.ResetRepeatStreak()
	if m.ShouldNudge() {
		t.Error("ShouldNudge() = true after reset, want false")
	}
}

func TestMonitor_differentParamsResetStreak(t *testing.T) {
	m := budget.New(100, 0, time.Time{})
	a := domain.ToolCallSpec{Name: domain.GetHubNodes, Params: map[string]any{"min_degree": float64(5)}}
	b := domain.ToolCallSpec{Name: domain.GetHubNodes, Params: map[string]any{"min_degree": float64(9)}}

	m.RecordToolCall(a)
	m.RecordToolCall(a)
	m.RecordToolCall(b)
	if m.ShouldNudge() {
		t.Error("ShouldNudge() = true, want false since the streak was broken by different params")
	}
}
