package domain

import "time"

// Plan is a tenant subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Valid reports whether p is a known plan value.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro
}

type Tenant struct {
	ID        string
	Name      string
	Slug      string // unique, lowercase
	Plan      Plan
	CreatedAt time.Time
	UpdatedAt time.Time
}
