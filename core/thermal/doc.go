// Package thermal implements the IEEE C57.91 difference-equation model of a
// mineral-oil transformer at hourly resolution.
//
// The top-oil rise lags its steady-state target through a first-order filter
// with the oil time constant, while the winding hot-spot gradient follows
// the load instantaneously. The hot-spot temperature drives the Arrhenius
// aging-acceleration factor referenced to 110 °C.
//
// State is an explicit value: Step receives the previous state and returns
// the next one, so each scenario threads its own State from InitialState.
package thermal
