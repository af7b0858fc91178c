// Package fleet synthesises the aggregate charging load of an EV fleet.
//
// Each vehicle draws an arrival time and an arrival state of charge, derives
// the energy it needs and how long it charges at constant power, and picks a
// start time according to the selected charging policy. Sessions are then
// aggregated at minute resolution and averaged to hourly MW values. All
// randomness comes from the *rand.Rand supplied by the caller so that two
// scenarios evaluated side by side never share a generator.
package fleet
