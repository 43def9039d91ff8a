// Package segmentcache persists per-segment synthesis results keyed by a
// content-addressed task identity, making generation runs idempotent and
// resumable.
//
// One JSON manifest exists per task id. The manifest is owned by a single
// Store for the lifetime of a run; all mutations pass through Put/Clear,
// which serialize behind one mutex and persist atomically (temp file +
// rename). A corrupt manifest degrades to an empty one with a logged
// warning rather than failing the run.
package segmentcache
