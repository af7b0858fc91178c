// Package simulation drives a 24-hour scenario through the fleet synthesiser,
// the feeder power flow and the transformer thermal model.
//
// Hours of one run form a recurrence on the thermal state and are evaluated
// strictly in order. Every run builds its own network, thermal state and
// random source, so independent scenarios can be evaluated concurrently
// (see Engine.Compare) without locking.
package simulation
