package services

import "context"

type contextKey int

const (
	taskIDKey contextKey = iota
	segmentIndexKey
)

// WithTaskID stores the task identity on the context for log correlation.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDKey, taskID)
}

// TaskIDFromContext returns the task identity stored on the context, if any.
func TaskIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(taskIDKey).(string)
	return id, ok && id != ""
}

// WithSegmentIndex stores the active segment index on the context.
func WithSegmentIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, segmentIndexKey, index)
}

// SegmentIndexFromContext returns the segment index stored on the context, if any.
func SegmentIndexFromContext(ctx context.Context) (int, bool) {
	index, ok := ctx.Value(segmentIndexKey).(int)
	return index, ok
}
