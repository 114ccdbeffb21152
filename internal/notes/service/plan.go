package service

import (
	"errors"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
)

// DefaultFreeNoteLimit is how many notes a free-plan tenant may hold.
const DefaultFreeNoteLimit = 3

var (
	ErrNoteLimitReached = errors.New("note limit reached")
	ErrInvalidPlan      = errors.New("invalid plan")
)

// PlanGate decides whether a tenant may create another note given its plan
// and current note count. It is a pure decision; the count must be read at
// decision time and the store's conditional insert closes the remaining
// race (two concurrent creates both passing the gate).
type PlanGate struct {
	FreeLimit int
}

// NewPlanGate returns a gate with the given free-plan cap, defaulting when
// limit <= 0.
func NewPlanGate(limit int) PlanGate {
	if limit <= 0 {
		limit = DefaultFreeNoteLimit
	}
	return PlanGate{FreeLimit: limit}
}

// NoteCap returns the maximum notes the plan allows, 0 meaning unlimited.
func (g PlanGate) NoteCap(plan domain.Plan) (int, error) {
	switch plan {
	case domain.PlanPro:
		return 0, nil
	case domain.PlanFree:
		return g.FreeLimit, nil
	default:
		return 0, ErrInvalidPlan
	}
}

// CanCreate reports whether a tenant with the given plan and current note
// count may create another note. The denial is structured and
// non-retryable, never a fatal error.
func (g PlanGate) CanCreate(plan domain.Plan, count int) error {
	limit, err := g.NoteCap(plan)
	if err != nil {
		return err
	}
	if limit > 0 && count >= limit {
		return ErrNoteLimitReached
	}
	return nil
}
