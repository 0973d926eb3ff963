package metrics

// Observer receives counters from the evaluation and write paths.
type Observer interface {
	RecordEvaluation(reason string)
	RecordCacheHit()
	RecordCacheMiss()
	RecordMutation(action string)
}

// NopObserver discards everything; used in tests.
type NopObserver struct{}

func (NopObserver) RecordEvaluation(string) {}
func (NopObserver) RecordCacheHit()         {}
func (NopObserver) RecordCacheMiss()        {}
func (NopObserver) RecordMutation(string)   {}
