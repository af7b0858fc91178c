package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridwarden/core/model"
)

type recordingSink struct {
	hours, runs, comparisons, closes int
	err                              error
}

func (r *recordingSink) RecordHour(HourEvent) error { r.hours++; return r.err }
func (r *recordingSink) RecordRun(model.SimulationRun) error {
	r.runs++
	return r.err
}
func (r *recordingSink) RecordComparison(model.Comparison) error {
	r.comparisons++
	return r.err
}
func (r *recordingSink) Close() error { r.closes++; return r.err }

// hourOnly supports only the base interface.
type hourOnly struct{ hours int }

func (h *hourOnly) RecordHour(HourEvent) error { h.hours++; return nil }

func TestMultiSink_FansOut(t *testing.T) {
	a, b := &recordingSink{}, &hourOnly{}
	m := NewMultiSink(a, b)

	require.NoError(t, m.RecordHour(HourEvent{}))
	require.NoError(t, m.RecordRun(model.SimulationRun{}))
	require.NoError(t, m.RecordComparison(model.Comparison{}))
	require.NoError(t, m.Close())

	assert.Equal(t, 1, a.hours)
	assert.Equal(t, 1, b.hours)
	assert.Equal(t, 1, a.runs)
	assert.Equal(t, 1, a.comparisons)
	assert.Equal(t, 1, a.closes)
}

func TestMultiSink_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	a, b := &recordingSink{err: boom}, &recordingSink{}
	m := NewMultiSink(a, b)

	assert.ErrorIs(t, m.RecordHour(HourEvent{}), boom)
	assert.Equal(t, 0, b.hours)
}

func TestMultiSink_CloseJoinsErrors(t *testing.T) {
	e1, e2 := errors.New("first"), errors.New("second")
	m := NewMultiSink(&recordingSink{err: e1}, &hourOnly{}, &recordingSink{err: e2})
	err := m.Close()
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
}

func TestNewMetricsSink_Empty(t *testing.T) {
	s, err := NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)
}
