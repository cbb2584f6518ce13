// Package metrics records build metrics.
//
// Components receive a Recorder and default to NoopRecorder, so no nil checks are needed:
//
//	recorder := metrics.Recorder(metrics.NoopRecorder{})
//	if cfg.MetricsFile != "" {
//	    recorder = metrics.NewPrometheusRecorder(nil)
//	}
//
// A PrometheusRecorder can be written to a file in the text exposition format after the
// build, for consumption by the node exporter textfile collector.
package metrics
