package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeForecast(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("timestamp,load_mw,temp_c\n")
	start := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 24; i++ {
		load := 15000 + 3000*math.Sin(float64(i-6)*math.Pi/12)
		fmt.Fprintf(&b, "%s,%.1f,%.1f\n", start.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), load, 25.0)
	}
	path := filepath.Join(t.TempDir(), "forecast.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestSimulateCommand_CSV(t *testing.T) {
	forecast := writeForecast(t)
	out := execute(t, "simulate", "--forecast", forecast, "--fleet", "200", "--seed", "3",
		"--policy", "uncontrolled", "--format", "csv", "--log-level", "error")

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 25)
	assert.Equal(t, "hour", rows[0][3])
	assert.Equal(t, "uncontrolled", rows[1][2])
}

func TestCompareCommand_JSONAndChart(t *testing.T) {
	forecast := writeForecast(t)
	chart := filepath.Join(t.TempDir(), "chart.png")
	out := execute(t, "compare", "--forecast", forecast, "--fleet", "200", "--seed", "3",
		"--policy", "ulo_timer", "--against", "smart_managed", "--format", "json",
		"--chart", chart, "--log-level", "error")

	var report struct {
		Runs []struct {
			Policy string `json:"policy"`
		} `json:"runs"`
		PeakReductionPercent *float64 `json:"peak_reduction_percent"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Runs, 2)
	assert.Equal(t, "delayed_timer", report.Runs[0].Policy)
	assert.Equal(t, "coordinated_spread", report.Runs[1].Policy)
	require.NotNil(t, report.PeakReductionPercent)

	info, err := os.Stat(chart)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSimulateCommand_BadPolicy(t *testing.T) {
	rootCmd.SetArgs([]string{"simulate", "--policy", "random", "--log-level", "error"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.Execute()
	assert.ErrorContains(t, err, "random")
}
