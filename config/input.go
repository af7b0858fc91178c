package config

import (
	"fmt"
	"time"
)

// DateLayout is the format of input.date.
const DateLayout = "2006-01-02"

// InputConfig locates the external load and temperature forecast.
type InputConfig struct {
	ForecastPath string `json:"forecast_path"`
	// Date selects the simulated day. Empty selects the forecast peak day.
	Date string `json:"date"`
}

// Validate checks the date format.
func (c InputConfig) Validate() error {
	if _, err := c.Day(); err != nil {
		return err
	}
	return nil
}

// Day parses Date. The zero time is returned when Date is empty.
func (c InputConfig) Day() (time.Time, error) {
	if c.Date == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(DateLayout, c.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want %s", c.Date, DateLayout)
	}
	return d, nil
}
