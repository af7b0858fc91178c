// Package factory instantiates pluggable modules, such as metrics sinks,
// from configuration. A module is described by a type name and a map of raw
// settings; the registered factory decodes the settings into its own typed
// struct and returns the implementation.
//
//	sinks := factory.NewRegistry[metrics.MetricsSink]()
//	sinks.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c struct{ URL string `json:"url"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInfluxSink(c.URL), nil
//	})
//	s, err := sinks.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://influx:8086"}})
package factory
