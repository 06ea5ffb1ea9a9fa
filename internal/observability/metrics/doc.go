// Package metrics provides the Prometheus collectors of a summarization run.
//
// Collectors are registered on an injectable prometheus.Registerer so that tests
// and the CLI can each use their own registry:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	m.RecordDocument(entity.StatusWritten)
//	_ = metrics.WriteTextfile("/var/lib/node_exporter/blog_summarizer.prom", reg)
package metrics
