package merkle

import "errors"

// ErrBatchStuck marks a mid-batch insert failure. The leaves inserted before
// the failure remain committed and the batch is archived in Processing; only
// external intervention can resolve it.
var ErrBatchStuck = errors.New("batch stuck in processing")
