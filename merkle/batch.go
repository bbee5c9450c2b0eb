package merkle

import (
	"fmt"

	wave "github.com/wavefork/wave-verifier"
)

// BatchClass is the scheduling class recorded on a batch.
//
// Observed behaviour, preserved deliberately: the class is stored as metadata
// only and never reorders the queue. Batches always process strictly FIFO,
// and ClassRollover is recorded by no code path here. See DESIGN.md.
type BatchClass uint8

const (
	ClassStandard BatchClass = iota
	ClassPriority
	ClassRollover
)

func (c BatchClass) String() string {
	switch c {
	case ClassStandard:
		return "standard"
	case ClassPriority:
		return "priority"
	case ClassRollover:
		return "rollover"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// BatchStatus is the lifecycle state of a batch. Batches move
// Pending -> Processing -> Completed, are archived by sequence number, and
// are never deleted. A batch stranded in Processing marks a fatal mid-batch
// failure that needs external intervention.
type BatchStatus uint8

const (
	BatchPending BatchStatus = iota
	BatchProcessing
	BatchCompleted
	BatchFailed
)

func (s BatchStatus) String() string {
	switch s {
	case BatchPending:
		return "pending"
	case BatchProcessing:
		return "processing"
	case BatchCompleted:
		return "completed"
	case BatchFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Batch is an ordered group of leaves submitted and scheduled as one unit.
type Batch struct {
	Seq         uint64
	Leaves      []wave.Value
	Submitter   wave.Owner
	SubmittedAt int64
	Class       BatchClass
	Status      BatchStatus
}

// CreateBatch queues leaves as a single pending batch and returns its
// sequence number. Sequence numbers are max(processed, pending)+1, strictly
// increasing without any external clock. The batch joins the tail of the
// queue regardless of class.
func (t *Tree) CreateBatch(leaves []wave.Value, submitter wave.Owner, class BatchClass, submittedAt int64) (uint64, error) {
	if t.meta.Finalized {
		return 0, fmt.Errorf("%w: tree is finalized", wave.ErrFrozenOrFinalized)
	}
	if len(leaves) > MaxBatchSize {
		return 0, fmt.Errorf("%w: batch of %d leaves exceeds maximum %d", wave.ErrCapacityExceeded, len(leaves), MaxBatchSize)
	}

	batch := &Batch{
		Seq:         t.nextSequence(),
		Leaves:      append([]wave.Value(nil), leaves...),
		Submitter:   submitter,
		SubmittedAt: submittedAt,
		Class:       class,
		Status:      BatchPending,
	}
	t.pending = append(t.pending, batch)
	t.meta.LastModified = submittedAt
	return batch.Seq, nil
}

func (t *Tree) nextSequence() uint64 {
	var maxSeq uint64
	for seq := range t.processed {
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	for _, b := range t.pending {
		if b.Seq > maxSeq {
			maxSeq = b.Seq
		}
	}
	return maxSeq + 1
}

// ProcessNextBatch dequeues the head batch, inserts every leaf in order and
// archives it as Completed. ok is false when the queue is empty.
//
// Batch processing is the one non atomic operation in this package. If an
// insert fails part way, the already inserted leaves remain committed and the
// batch is archived still in Processing; the returned error wraps
// ErrBatchStuck and the caller must treat it as fatal. There is no rollback
// and no retry.
func (t *Tree) ProcessNextBatch() (seq uint64, ok bool, err error) {
	if len(t.pending) == 0 {
		return 0, false, nil
	}
	batch := t.pending[0]
	t.pending = t.pending[1:]
	batch.Status = BatchProcessing

	for i, leaf := range batch.Leaves {
		if _, err := t.Insert(leaf); err != nil {
			t.processed[batch.Seq] = batch
			return batch.Seq, true, fmt.Errorf(
				"%w: batch %d failed at leaf %d of %d: %w",
				ErrBatchStuck, batch.Seq, i, len(batch.Leaves), err)
		}
	}

	batch.Status = BatchCompleted
	t.processed[batch.Seq] = batch
	return batch.Seq, true, nil
}

// PendingBatches returns the number of batches waiting in the queue.
func (t *Tree) PendingBatches() int { return len(t.pending) }

// BatchStatus reports the lifecycle state of the batch with the given
// sequence number. The processed archive is consulted first, then the pending
// queue; ok is false for an unknown sequence.
func (t *Tree) BatchStatus(seq uint64) (BatchStatus, bool) {
	if b, found := t.processed[seq]; found {
		return b.Status, true
	}
	for _, b := range t.pending {
		if b.Seq == seq {
			return b.Status, true
		}
	}
	return 0, false
}
