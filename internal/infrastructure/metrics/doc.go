// Package metrics exposes ccsd state as Prometheus metrics.
//
// Metrics (with the configured namespace, default "ccsd"):
//   - ccsd_queries_total{query,outcome}: cluster.conf attribute queries by outcome
//   - ccsd_config_loads_total{result}: load attempts (ok, error, stale)
//   - ccsd_config_load_duration_seconds: time to read, parse and install a load
//   - ccsd_config_version: version of the installed master document
//   - ccsd_update_required: 1 when a peer announced a newer version
//   - ccsd_announced_version: highest version announced by a peer
//   - ccsd_quorate: 1 when the node belongs to a quorate partition
//
// Usage:
//
//	collector := metrics.NewCollector("ccsd", nil)
//	http.Handle("/metrics", collector.Handler())
package metrics
