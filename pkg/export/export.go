package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/gridwarden/core/model"
)

// Format selects the report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" or "csv", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Report is the exported outcome of one command invocation.
type Report struct {
	Runs []model.SimulationRun `json:"runs"`
	// PeakReductionPercent is set for policy comparisons only.
	PeakReductionPercent *float64 `json:"peak_reduction_percent,omitempty"`
}

// FromComparison builds a two-run report.
func FromComparison(c model.Comparison) Report {
	pr := c.PeakReductionPercent
	return Report{Runs: []model.SimulationRun{c.Reference, c.Candidate}, PeakReductionPercent: &pr}
}

// Write encodes r in the given format.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatJSON, "":
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

var csvHeader = []string{
	"run_id", "scenario", "policy", "hour",
	"base_load_mw", "ev_load_mw", "total_load_mw", "ambient_c",
	"loading_percent", "voltage_pu", "collapsed",
	"top_oil_rise_c", "hot_spot_c", "aging_factor",
}

// WriteCSV writes one row per run and hour.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, run := range r.Runs {
		for h, hr := range run.Hours {
			rec := []string{
				run.ID,
				run.Name,
				run.Policy.String(),
				strconv.Itoa(h),
				formatFloat(run.BaseLoad[h]),
				formatFloat(hr.EVLoadMW),
				formatFloat(hr.TotalLoadMW),
				formatFloat(hr.AmbientC),
				formatFloat(hr.PowerFlow.LoadingPercent),
				formatFloat(hr.PowerFlow.VoltagePU),
				strconv.FormatBool(hr.PowerFlow.Collapsed),
				formatFloat(hr.TopOilRiseC),
				formatFloat(hr.Aging.HotSpotC),
				formatFloat(hr.Aging.AgingFactor),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
