package registry

import wave "github.com/wavefork/wave-verifier"

// FlowID identifies a registered proof flow.
type FlowID uint64

// MaxFlowID bounds flow registration.
const MaxFlowID FlowID = 1_000_000

// Flow is one registered verification flow. A flow may pin a merkle root, in
// which case executions must carry an inclusion proof for that commitment,
// and may name a callback target the surrounding system invokes after a
// successful execution.
type Flow struct {
	Authority   wave.Owner
	ID          FlowID
	MerkleRoot  *wave.Value
	MerkleDepth uint8
	CircuitHash wave.Value
	Enabled     bool
	Callback    *wave.Owner
}

// ProofVerifier is the outer cryptographic gate. The proof system itself is
// entirely outside this module; implementations are expected to be provided
// by the deployment.
type ProofVerifier interface {
	Verify(circuitHash wave.Value, proof, publicInputs []byte) error
}
