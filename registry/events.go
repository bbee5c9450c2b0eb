package registry

import (
	"log/slog"

	wave "github.com/wavefork/wave-verifier"
)

// EventKind tags an emitted registry event.
type EventKind uint8

const (
	EventFlowRegistered EventKind = iota
	EventFlowExecuted
	EventProofRejected
	EventNullifierUsed
	EventRootUpdated
	EventFlowTriggered
)

func (k EventKind) String() string {
	switch k {
	case EventFlowRegistered:
		return "flow_registered"
	case EventFlowExecuted:
		return "flow_executed"
	case EventProofRejected:
		return "proof_rejected"
	case EventNullifierUsed:
		return "nullifier_used"
	case EventRootUpdated:
		return "root_updated"
	case EventFlowTriggered:
		return "flow_triggered"
	}
	return "unknown"
}

// Event is one observable registry outcome. Unused fields stay zero.
type Event struct {
	Kind      EventKind
	FlowID    FlowID
	Nullifier wave.Value
	Root      wave.Value
	Target    wave.Owner
	Reason    string
	Timestamp int64
}

// Sink receives events in emission order, synchronously with the call that
// produced them.
type Sink interface {
	Emit(Event)
}

// CollectSink accumulates events in memory, for tests and local inspection.
type CollectSink struct {
	Events []Event
}

func (c *CollectSink) Emit(e Event) {
	c.Events = append(c.Events, e)
}

func (c *CollectSink) Reset() { c.Events = nil }

// emit logs the event and forwards it to the configured sink, if any.
func (r *Registry) emit(e Event) {
	r.log.Info("registry event",
		slog.String("kind", e.Kind.String()),
		slog.Uint64("flow_id", uint64(e.FlowID)),
		slog.String("nullifier", e.Nullifier.String()),
		slog.String("reason", e.Reason),
		slog.Int64("ts", e.Timestamp),
	)
	if r.sink != nil {
		r.sink.Emit(e)
	}
}
