package analytics

import "time"

type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeZeroResults Outcome = "zero_results"
	OutcomeInvalidMode Outcome = "invalid_mode"
)

// QueryEvent describes one evaluated (or rejected) query.
type QueryEvent struct {
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	Words     int       `json:"words"`
	Matched   int       `json:"matched"`
	TotalDocs int       `json:"total_docs"`
	LatencyUs int64     `json:"latency_us"`
	CacheHit  bool      `json:"cache_hit"`
	Outcome   Outcome   `json:"outcome"`
	Source    string    `json:"source"`
	TraceID   string    `json:"trace_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives query events. Implementations must not block the caller.
type Sink interface {
	Record(QueryEvent)
}

// Sinks fans an event out to several sinks.
type Sinks []Sink

func (s Sinks) Record(e QueryEvent) {
	for _, sink := range s {
		sink.Record(e)
	}
}
