package registry

import wave "github.com/wavefork/wave-verifier"

// ProofRecord is one successful execution: which nullifier was consumed,
// when, under which flow, and the hash of the public inputs presented.
type ProofRecord struct {
	Nullifier        wave.Value
	Timestamp        int64
	FlowID           FlowID
	PublicInputsHash wave.Value
}

// ProofLog is the append only execution history. Records are never deleted.
type ProofLog struct {
	records []ProofRecord
}

func (l *ProofLog) append(rec ProofRecord) {
	l.records = append(l.records, rec)
}

// Len returns the number of recorded executions.
func (l *ProofLog) Len() int { return len(l.records) }

// ByFlow returns the records for one flow, in execution order.
func (l *ProofLog) ByFlow(id FlowID) []ProofRecord {
	var out []ProofRecord
	for _, rec := range l.records {
		if rec.FlowID == id {
			out = append(out, rec)
		}
	}
	return out
}

// ByNullifier returns the records consuming the given nullifier. A correctly
// operating registry produces at most one.
func (l *ProofLog) ByNullifier(n wave.Value) []ProofRecord {
	var out []ProofRecord
	for _, rec := range l.records {
		if rec.Nullifier == n {
			out = append(out, rec)
		}
	}
	return out
}

// ByTimeRange returns the records with start <= Timestamp <= end.
func (l *ProofLog) ByTimeRange(start, end int64) []ProofRecord {
	var out []ProofRecord
	for _, rec := range l.records {
		if rec.Timestamp >= start && rec.Timestamp <= end {
			out = append(out, rec)
		}
	}
	return out
}
