package model

import (
	"errors"
	"fmt"
	"strings"
)

// ChargingPolicy selects how a fleet chooses its charging start times.
type ChargingPolicy int

const (
	// PolicyUncontrolled starts charging as soon as the vehicle arrives.
	PolicyUncontrolled ChargingPolicy = iota
	// PolicyDelayedTimer starts every vehicle at 23:00 plus up to 15 minutes.
	PolicyDelayedTimer
	// PolicyCoordinatedSpread staggers starts over 23:00-04:00.
	PolicyCoordinatedSpread
)

// ErrUnknownPolicy is returned when a policy name cannot be parsed.
var ErrUnknownPolicy = errors.New("unknown charging policy")

func (p ChargingPolicy) String() string {
	switch p {
	case PolicyUncontrolled:
		return "uncontrolled"
	case PolicyDelayedTimer:
		return "delayed_timer"
	case PolicyCoordinatedSpread:
		return "coordinated_spread"
	default:
		return "unknown"
	}
}

// ParseChargingPolicy converts a configuration name to a policy. The legacy
// names "ulo_timer" and "smart_managed" are accepted as aliases.
func ParseChargingPolicy(s string) (ChargingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uncontrolled", "":
		return PolicyUncontrolled, nil
	case "delayed_timer", "delayed-timer", "ulo_timer":
		return PolicyDelayedTimer, nil
	case "coordinated_spread", "coordinated-spread", "smart_managed":
		return PolicyCoordinatedSpread, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p ChargingPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ChargingPolicy) UnmarshalText(b []byte) error {
	v, err := ParseChargingPolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
