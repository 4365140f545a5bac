// Package server provides the MCP server context, slot listing sessions,
// health endpoints, and the metrics server for the meetsched application.
//
// # Key Components
//
// ServerContext owns the calendar manager and a mail dialer. Tool handlers
// dial a fresh IMAP connection per call and reload the calendar file per
// call, so external edits to either are always picked up.
//
// SlotSessions maps get_free_slots listings to short-lived list_id tokens.
// block_slot resolves a slot index against the listing the client was
// shown, which keeps index-based blocking safe across calendar changes.
//
// HealthChecker serves /healthz and /readyz for Kubernetes probes, and
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server
