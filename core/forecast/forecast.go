// Package forecast is the boundary with the external load-forecasting
// pipeline. It reads the hourly forecast and weather series, resolves the
// simulated day to exactly 24 aligned values and rescales the provincial
// forecast to a feeder.
package forecast

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/gridwarden/core/model"
)

// ErrShortHorizon is returned when fewer than 24 values are available.
var ErrShortHorizon = errors.New("forecast horizon shorter than one day")

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02T15:04"}

// Series is an hourly forecast with the matching ambient temperature.
type Series struct {
	Time   []time.Time
	LoadMW []float64
	TempC  []float64
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.Time) }

// ReadCSV parses a series with a header naming the columns timestamp,
// load_mw and temp_c in any order. Missing temperatures are carried forward
// from the previous sample.
func ReadCSV(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return Series{}, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range []string{"timestamp", "load_mw", "temp_c"} {
		if _, ok := cols[c]; !ok {
			return Series{}, fmt.Errorf("missing column %q", c)
		}
	}

	var s Series
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		ts, err := parseTime(rec[cols["timestamp"]])
		if err != nil {
			return Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		load, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["load_mw"]]), 64)
		if err != nil {
			return Series{}, fmt.Errorf("line %d: load_mw: %w", line, err)
		}
		var temp float64
		if raw := strings.TrimSpace(rec[cols["temp_c"]]); raw != "" {
			if temp, err = strconv.ParseFloat(raw, 64); err != nil {
				return Series{}, fmt.Errorf("line %d: temp_c: %w", line, err)
			}
		} else if n := len(s.TempC); n > 0 {
			temp = s.TempC[n-1]
		} else {
			return Series{}, fmt.Errorf("line %d: temp_c missing with nothing to carry forward", line)
		}
		s.Time = append(s.Time, ts)
		s.LoadMW = append(s.LoadMW, load)
		s.TempC = append(s.TempC, temp)
	}
	return s, nil
}

func parseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", v)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Day returns the load and temperature profiles of the given date. When the
// date does not hold exactly 24 samples the first 24 samples of the series
// are used instead and fellBack is true.
func (s Series) Day(date time.Time) (load, temp model.Profile, fellBack bool, err error) {
	var idx []int
	for i, t := range s.Time {
		if sameDay(t, date) {
			idx = append(idx, i)
		}
	}
	if len(idx) != model.HoursPerDay {
		if s.Len() < model.HoursPerDay {
			return load, temp, false, fmt.Errorf("%w: %d samples", ErrShortHorizon, s.Len())
		}
		idx = idx[:0]
		for i := 0; i < model.HoursPerDay; i++ {
			idx = append(idx, i)
		}
		fellBack = true
	}
	for h, i := range idx {
		load[h] = s.LoadMW[i]
		temp[h] = s.TempC[i]
	}
	return load, temp, fellBack, nil
}

// PeakDay returns the date holding the highest forecast load.
func (s Series) PeakDay() (time.Time, error) {
	if s.Len() == 0 {
		return time.Time{}, ErrShortHorizon
	}
	best := 0
	for i, v := range s.LoadMW {
		if v > s.LoadMW[best] {
			best = i
		}
	}
	y, m, d := s.Time[best].Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.Time[best].Location()), nil
}

// ScaleToPeak rescales p so that its maximum equals targetMW.
func ScaleToPeak(p model.Profile, targetMW float64) (model.Profile, error) {
	peak := p.Max()
	if peak <= 0 {
		return p, fmt.Errorf("cannot scale profile with non-positive peak %.3f", peak)
	}
	if targetMW <= 0 {
		return p, fmt.Errorf("feeder peak target must be positive, got %.3f", targetMW)
	}
	return p.Scale(targetMW / peak), nil
}
