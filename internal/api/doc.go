// Package api implements the HTTP status API for ccsd.
//
// This package provides:
//   - GET  /api/v1/health        liveness and version
//   - GET  /api/v1/status        installed master, quorate and update_required
//   - GET  /api/v1/history       recent cluster.conf loads (?limit=N)
//   - GET  /api/v1/history/{id}  a single load
//   - POST /api/v1/reload        reload cluster.conf from disk
//   - the Prometheus endpoint, when metrics are enabled
//
// Every request passes through the middleware stack (request ID, logging,
// recovery, body size limit).
//
// The API is read-mostly and has no authentication; bind it to a loopback
// or management address.
package api
