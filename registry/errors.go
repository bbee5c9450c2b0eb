package registry

import "errors"

var (
	// ErrNotAuthorized is returned when the caller's pre-verified
	// authorization boolean is false. No signature checking happens here;
	// the surrounding layer resolves identity before calling in.
	ErrNotAuthorized = errors.New("caller not authorized")

	// ErrUnknownFlow is returned for operations on an unregistered flow id.
	ErrUnknownFlow = errors.New("unknown flow")

	// ErrFlowExists is returned when registering an already used flow id.
	ErrFlowExists = errors.New("flow already registered")

	// ErrFlowDisabled is returned when executing a disabled flow.
	ErrFlowDisabled = errors.New("flow disabled")

	// ErrNullifierSeen is returned when a spend presents a nullifier the
	// replay protection set already holds.
	ErrNullifierSeen = errors.New("nullifier already used")

	// ErrProofRejected wraps verifier and membership failures.
	ErrProofRejected = errors.New("proof rejected")
)
