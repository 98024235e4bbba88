package domain

import "fmt"

// Plan is the subscription tier. It fixes the default seat capacity.
type Plan string

const (
	PlanSolo     Plan = "solo"
	PlanTeam     Plan = "team"
	PlanBusiness Plan = "business"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanSolo, PlanTeam, PlanBusiness:
		return true
	}
	return false
}

// MaxSeats is the seat capacity a new organization on this plan starts with.
func (p Plan) MaxSeats() int {
	switch p {
	case PlanSolo:
		return 1
	case PlanTeam:
		return 5
	case PlanBusiness:
		return 25
	}
	return 0
}

func (p Plan) String() string { return string(p) }

func ParsePlan(s string) (Plan, error) {
	p := Plan(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown plan %q", s)
	}
	return p, nil
}
