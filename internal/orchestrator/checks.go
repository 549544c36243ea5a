package orchestrator

import (
	"context"
	"errors"

	"github.com/codegraph-ai/agentic-core/internal/budget"
	"github.com/codegraph-ai/agentic-core/internal/domain"
)

// checkAll consults cancellation/deadline (via state.ctx, which the
// core.Node/Flow machinery does not thread into Prep) ahead of the
// step/token budget. Called before every LLM turn and before every tool
// dispatch so a terminal condition is caught as early as possible.
func checkAll(s *state) budget.Decision {
	if err := s.ctx.Err(); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return budget.Decision{Stop: true, Reason: domain.Cancelled}
		case errors.Is(err, context.DeadlineExceeded):
			return budget.Decision{Stop: true, Reason: domain.DeadlineExceeded}
		}
	}
	return s.monitor.Check()
}
