// Package cachefan implements the write-path core of a read-cached,
// notification-driven application: pattern-based cache invalidation over a
// shared key-value store, and multi-channel notification fan-out to live
// socket sessions and background push endpoints.
//
// Components:
//   - store.Store: byte store with TTL and glob scan-delete (Redis, BigCache).
//   - Invalidator: evicts every cached entry matching a set of glob patterns
//     after a write commits. Best-effort; a cold store degrades to a no-op.
//   - Dispatcher: delivers one Event to every live session of the recipient
//     and to every registered push endpoint. Duplication across channels is
//     intentional; clients deduplicate by the payload's category tag.
//   - session.Registry: identity -> live connection handles.
//   - push.Sender: background delivery to a browser push endpoint.
//
// Write-path contract:
//
//	commitWrite(entity)                             // durable first
//	_ = inv.Invalidate(ctx, "booking:42", "booking:list:*")
//	_ = disp.Dispatch(ctx, cachefan.Event{...})     // may run concurrently
//
// Nothing in this package is allowed to fail the surrounding request: all
// results are advisory and callers acknowledge them with a blank assign.
package cachefan
