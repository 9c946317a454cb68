package port

// ProgressObserver receives advisory progress events during a fill run.
// Implementations must be cheap; the pipeline calls them synchronously.
type ProgressObserver interface {
	Event(event, detail string)
}
