// Package metrics exposes operation counters for the registry layer. The
// core structures never import this package; the registry records outcomes as
// it drives them, keeping the cost model of a core call untouched.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives registry level operation outcomes. Implementations must
// be cheap; they run inline with the serialized call path.
type Recorder interface {
	LeafInserted()
	BatchProcessed()
	NullifierSpent()
	NullifierReplayed()
	RolloverCompleted()
	CheckpointTaken()
	ProofRejected()
}

// Nop discards every observation.
type Nop struct{}

func (Nop) LeafInserted()      {}
func (Nop) BatchProcessed()    {}
func (Nop) NullifierSpent()    {}
func (Nop) NullifierReplayed() {}
func (Nop) RolloverCompleted() {}
func (Nop) CheckpointTaken()   {}
func (Nop) ProofRejected()     {}

// Prometheus counts outcomes into a registerer.
type Prometheus struct {
	leaves      prometheus.Counter
	batches     prometheus.Counter
	spent       prometheus.Counter
	replayed    prometheus.Counter
	rollovers   prometheus.Counter
	checkpoints prometheus.Counter
	rejected    prometheus.Counter
}

// NewPrometheus registers the counters with reg and returns the recorder.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		leaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wave_leaves_inserted_total",
			Help: "Leaves committed to the merkle tree.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wave_batches_processed_total",
			Help: "Batches fully processed from the queue.",
		}),
		spent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wave_nullifiers_spent_total",
			Help: "Nullifiers admitted to the replay protection set.",
		}),
		replayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wave_nullifiers_replayed_total",
			Help: "Nullifier spends rejected as already seen.",
		}),
		rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wave_rollovers_completed_total",
			Help: "Bucket rollover episodes drained.",
		}),
		checkpoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wave_checkpoints_total",
			Help: "Operation log checkpoints taken.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wave_proofs_rejected_total",
			Help: "Flow executions rejected before touching the core.",
		}),
	}
	reg.MustRegister(p.leaves, p.batches, p.spent, p.replayed, p.rollovers, p.checkpoints, p.rejected)
	return p
}

func (p *Prometheus) LeafInserted()      { p.leaves.Inc() }
func (p *Prometheus) BatchProcessed()    { p.batches.Inc() }
func (p *Prometheus) NullifierSpent()    { p.spent.Inc() }
func (p *Prometheus) NullifierReplayed() { p.replayed.Inc() }
func (p *Prometheus) RolloverCompleted() { p.rollovers.Inc() }
func (p *Prometheus) CheckpointTaken()   { p.checkpoints.Inc() }
func (p *Prometheus) ProofRejected()     { p.rejected.Inc() }
