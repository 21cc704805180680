// Package daemon owns the running state of ccsd and the cluster.conf load path.
//
// State holds what a cluster configuration daemon needs to share between
// its goroutines: the installed master document, whether a peer announced a
// newer version (update_required), and whether the node is quorate. Every
// field is guarded, so the loader, the file watcher and MQTT handlers can
// touch it concurrently.
//
// Loader turns a cluster.conf file into an installed master document:
//
//	read (size-limited) -> checksum -> parse -> config_version + cluster name
//	  -> reject stale versions -> apply logging policy -> install
//	  -> history, announcement, telemetry, metrics
//
// Only the steps up to install can fail a load. The trailing side effects
// are logged when they fail and never undo an install.
//
// Watcher reloads cluster.conf when it changes on disk, debounced so that an
// editor's write-rename sequence produces one load.
package daemon
