// Package wave holds the shared primitives for the wave-verifier core: the
// fixed 32 byte value type committed to by the merkle tree and tracked by the
// nullifier hash set, the owner identity used for administrative addressing,
// and the error kinds every component reports against.
//
// The core packages (merkle, hashset) are deliberately free of clocks, locks
// and background work. Each public operation runs synchronously to completion
// under a mutual exclusion guarantee enforced by the caller, and amortised
// work such as bucket rollover only ever advances as a side effect of an
// explicit call.
package wave
