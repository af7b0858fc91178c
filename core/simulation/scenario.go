package simulation

import (
	"fmt"
	"time"

	"github.com/kilianp07/gridwarden/core/fleet"
	"github.com/kilianp07/gridwarden/core/model"
)

// Scenario is one 24-hour simulation request. BaseLoad and Ambient must
// already be aligned to the simulated day.
type Scenario struct {
	Name     string
	Day      time.Time
	BaseLoad model.Profile
	Ambient  model.Profile
	Fleet    fleet.Config
	Policy   model.ChargingPolicy
	Seed     int64
	// NameplateMW is the display-only transformer limit used for the margin.
	NameplateMW float64
}

func (s Scenario) displayName() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%s-%d", s.Policy, s.Fleet.Size)
}

// WithPolicy returns a copy of s using another charging policy. Base load,
// ambient series, fleet and seed are shared so that only the policy differs.
func (s Scenario) WithPolicy(p model.ChargingPolicy) Scenario {
	out := s
	out.Policy = p
	out.Name = ""
	return out
}
