// Package registry is the surrounding layer that drives the core structures:
// it keeps the registered proof flows, gates executions through a pluggable
// proof verifier, consumes nullifiers through the hash set for replay
// protection, and records every successful execution in an append only proof
// log. Authorization is consumed as a pre-verified boolean; the registry
// never inspects signatures.
package registry

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"

	wave "github.com/wavefork/wave-verifier"
	"github.com/wavefork/wave-verifier/hashset"
	"github.com/wavefork/wave-verifier/merkle"
	"github.com/wavefork/wave-verifier/metrics"
)

// Registry owns the flow table, the nullifier set and the proof log. Unlike
// the core structures it carries its own mutex: it sits above the serialized
// call boundary, not below it.
type Registry struct {
	mu sync.Mutex

	log        *slog.Logger
	flows      map[FlowID]*Flow
	nullifiers *hashset.Set
	proofLog   ProofLog
	verifier   ProofVerifier
	rec        metrics.Recorder
	sink       Sink
}

// Option adjusts registry construction.
type Option func(*Registry)

// WithMetrics attaches an outcome recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(r *Registry) { r.rec = rec }
}

// WithEventSink attaches an event sink alongside the structured log output.
func WithEventSink(sink Sink) Option {
	return func(r *Registry) { r.sink = sink }
}

// New creates a registry over the given nullifier set and proof verifier.
func New(log *slog.Logger, nullifiers *hashset.Set, verifier ProofVerifier, opts ...Option) *Registry {
	r := &Registry{
		log:        log,
		flows:      make(map[FlowID]*Flow),
		nullifiers: nullifiers,
		verifier:   verifier,
		rec:        metrics.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterFlow adds a flow. The authorized boolean is the pre-verified
// outcome of the caller's signature check, performed outside this module.
func (r *Registry) RegisterFlow(authorized bool, flow Flow, ts int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !authorized {
		return ErrNotAuthorized
	}
	if flow.ID > MaxFlowID {
		return fmt.Errorf("%w: flow id %d exceeds maximum %d", wave.ErrInvalidArgument, flow.ID, MaxFlowID)
	}
	if _, ok := r.flows[flow.ID]; ok {
		return fmt.Errorf("%w: %d", ErrFlowExists, flow.ID)
	}
	flow.Enabled = true
	r.flows[flow.ID] = &flow

	e := Event{Kind: EventFlowRegistered, FlowID: flow.ID, Timestamp: ts}
	if flow.MerkleRoot != nil {
		e.Root = *flow.MerkleRoot
	}
	r.emit(e)
	return nil
}

// UpdateRoot pins a new merkle root (and its tree depth) on a flow.
func (r *Registry) UpdateRoot(authorized bool, id FlowID, root wave.Value, depth uint8, ts int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !authorized {
		return ErrNotAuthorized
	}
	flow, ok := r.flows[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFlow, id)
	}
	flow.MerkleRoot = &root
	flow.MerkleDepth = depth
	r.emit(Event{Kind: EventRootUpdated, FlowID: id, Root: root, Timestamp: ts})
	return nil
}

// SetEnabled toggles a flow.
func (r *Registry) SetEnabled(authorized bool, id FlowID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !authorized {
		return ErrNotAuthorized
	}
	flow, ok := r.flows[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFlow, id)
	}
	flow.Enabled = enabled
	return nil
}

// Flow returns a copy of the registered flow, with ok false when unknown.
func (r *Registry) Flow(id FlowID) (Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	flow, ok := r.flows[id]
	if !ok {
		return Flow{}, false
	}
	return *flow, true
}

// FreezeNullifiers blocks further spends until an administrative action
// outside the core clears the flag. Lookups keep working.
func (r *Registry) FreezeNullifiers(authorized bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !authorized {
		return ErrNotAuthorized
	}
	r.nullifiers.Freeze()
	return nil
}

// ExecuteRequest carries one flow execution. The membership fields are only
// consulted when the flow pins a merkle root.
type ExecuteRequest struct {
	FlowID       FlowID
	Nullifier    wave.Value
	Proof        []byte
	PublicInputs []byte

	Leaf           wave.Value
	LeafIndex      uint64
	InclusionProof []wave.Value

	Timestamp int64
}

// Execute gates a request through the proof verifier and, when required, the
// flow's merkle commitment, then consumes the nullifier and appends to the
// proof log. A replayed nullifier fails with ErrNullifierSeen before any
// state changes.
func (r *Registry) Execute(req ExecuteRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	flow, ok := r.flows[req.FlowID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFlow, req.FlowID)
	}
	if !flow.Enabled {
		return fmt.Errorf("%w: %d", ErrFlowDisabled, req.FlowID)
	}

	if err := r.verifier.Verify(flow.CircuitHash, req.Proof, req.PublicInputs); err != nil {
		r.reject(req, err.Error())
		return fmt.Errorf("%w: %v", ErrProofRejected, err)
	}

	if flow.MerkleRoot != nil {
		ok := merkle.VerifyAgainstRoot(
			sha256.New, *flow.MerkleRoot, flow.MerkleDepth,
			req.Leaf, req.InclusionProof, req.LeafIndex,
		)
		if !ok {
			r.reject(req, "membership proof failed")
			return fmt.Errorf("%w: membership proof failed", ErrProofRejected)
		}
	}

	spent, err := r.nullifiers.Insert(req.Nullifier, req.Timestamp)
	if err != nil {
		return fmt.Errorf("spending nullifier: %w", err)
	}
	if !spent {
		r.rec.NullifierReplayed()
		r.reject(req, "nullifier already used")
		return fmt.Errorf("%w", ErrNullifierSeen)
	}
	r.rec.NullifierSpent()

	r.proofLog.append(ProofRecord{
		Nullifier:        req.Nullifier,
		Timestamp:        req.Timestamp,
		FlowID:           req.FlowID,
		PublicInputsHash: sha256.Sum256(req.PublicInputs),
	})

	r.emit(Event{Kind: EventFlowExecuted, FlowID: req.FlowID, Nullifier: req.Nullifier, Timestamp: req.Timestamp})
	r.emit(Event{Kind: EventNullifierUsed, FlowID: req.FlowID, Nullifier: req.Nullifier, Timestamp: req.Timestamp})
	if flow.Callback != nil {
		r.emit(Event{Kind: EventFlowTriggered, FlowID: req.FlowID, Target: *flow.Callback, Timestamp: req.Timestamp})
	}
	return nil
}

func (r *Registry) reject(req ExecuteRequest, reason string) {
	r.rec.ProofRejected()
	r.emit(Event{
		Kind:      EventProofRejected,
		FlowID:    req.FlowID,
		Nullifier: req.Nullifier,
		Reason:    reason,
		Timestamp: req.Timestamp,
	})
}

// Maintain drains any active rollover episode and takes a checkpoint of the
// nullifier operation log. Deployments call it on their own cadence; nothing
// here runs spontaneously.
func (r *Registry) Maintain(ts int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nullifiers.RolloverActive() {
		r.nullifiers.ProcessRollover(ts)
		r.rec.RolloverCompleted()
	}
	r.nullifiers.Checkpoint(ts)
	r.rec.CheckpointTaken()
}

// ProofHistory exposes the append only execution log.
func (r *Registry) ProofHistory() *ProofLog {
	return &r.proofLog
}
