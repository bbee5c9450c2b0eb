package hashset

import wave "github.com/wavefork/wave-verifier"

// OpType tags an operation log entry.
type OpType uint8

const (
	OpInsert OpType = iota
	OpRemove
	OpRollover
	OpCheckpoint
)

func (t OpType) String() string {
	switch t {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpRollover:
		return "rollover"
	case OpCheckpoint:
		return "checkpoint"
	}
	return "unknown"
}

// Operation is one entry in the append only log. Rollover and Checkpoint
// entries carry a zero item and bucket index.
type Operation struct {
	Type        OpType
	Item        wave.Value
	Timestamp   int64
	BucketIndex int
}

// OperationLog holds the entries since the last checkpoint plus the
// cumulative operation count recorded at that checkpoint.
type OperationLog struct {
	Ops            []Operation
	LastCheckpoint uint64
}

func (s *Set) logOperation(op Operation) {
	s.log.Ops = append(s.log.Ops, op)
	s.meta.TotalOps++
}

// OperationHistory returns the log entries recorded since the last
// checkpoint.
func (s *Set) OperationHistory() []Operation {
	return append([]Operation(nil), s.log.Ops...)
}

// TotalOperations returns the cumulative mutation count over the whole life
// of the set. Checkpoints never reset it.
func (s *Set) TotalOperations() uint64 { return s.meta.TotalOps }

// LastCheckpoint returns the cumulative operation count archived by the most
// recent checkpoint.
func (s *Set) LastCheckpoint() uint64 { return s.log.LastCheckpoint }

// Checkpoint drains any active rollover, records a Checkpoint entry, archives
// the cumulative operation count and then clears the log. This is
// destructive: history before the checkpoint is not retrievable afterwards.
func (s *Set) Checkpoint(ts int64) {
	if s.rollover.Active {
		s.ProcessRollover(ts)
	}

	s.logOperation(Operation{Type: OpCheckpoint, Timestamp: ts})
	s.log.LastCheckpoint = s.meta.TotalOps
	s.log.Ops = nil
	s.meta.LastModified = ts
}
