package pipeline

// Observer receives per-segment progress callbacks. Callbacks may arrive
// from worker goroutines; implementations must be safe for concurrent use.
type Observer interface {
	SegmentStarted(index, total int, voice string)
	SegmentFinished(result SegmentResult)
}

// NopObserver ignores all callbacks.
type NopObserver struct{}

func (NopObserver) SegmentStarted(int, int, string) {}

func (NopObserver) SegmentFinished(SegmentResult) {}

// ObserverFunc adapts a completion callback to the Observer interface.
type ObserverFunc func(result SegmentResult)

func (f ObserverFunc) SegmentStarted(int, int, string) {}

func (f ObserverFunc) SegmentFinished(result SegmentResult) { f(result) }
