package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

const (
	// HoursPerDay is the length of every simulated horizon.
	HoursPerDay = 24
	// MinutesPerDay bounds the minute-resolution charging buffer.
	MinutesPerDay = HoursPerDay * 60
)

// Profile is an hour-indexed series covering one day. Index 0 is 00:00-01:00.
// It carries load curves in MW and ambient temperatures in °C.
type Profile [HoursPerDay]float64

// ProfileFromSlice copies exactly HoursPerDay values into a Profile.
func ProfileFromSlice(values []float64) (Profile, error) {
	var p Profile
	if len(values) != HoursPerDay {
		return p, fmt.Errorf("profile needs %d values, got %d", HoursPerDay, len(values))
	}
	copy(p[:], values)
	return p, nil
}

// Constant returns a profile where every hour holds v.
func Constant(v float64) Profile {
	var p Profile
	for h := range p {
		p[h] = v
	}
	return p
}

// Slice returns a copy of the profile values.
func (p Profile) Slice() []float64 {
	out := make([]float64, HoursPerDay)
	copy(out, p[:])
	return out
}

// Max returns the largest hourly value.
func (p Profile) Max() float64 { return floats.Max(p[:]) }

// ArgMax returns the hour of the largest value.
func (p Profile) ArgMax() int { return floats.MaxIdx(p[:]) }

// Sum returns the sum of all hourly values.
func (p Profile) Sum() float64 { return floats.Sum(p[:]) }

// Add returns the elementwise sum of p and o.
func (p Profile) Add(o Profile) Profile {
	var out Profile
	floats.AddTo(out[:], p[:], o[:])
	return out
}

// Scale returns p multiplied by f.
func (p Profile) Scale(f float64) Profile {
	out := p
	floats.Scale(f, out[:])
	return out
}
