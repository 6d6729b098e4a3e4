package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(rec RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordCurtailment forwards the records to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordCurtailment(recs []CurtailmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordCurtailment(recs); err != nil {
			return err
		}
	}
	return nil
}
