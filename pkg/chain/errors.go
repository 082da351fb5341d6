package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrBurnNotSet marks a missing SubtensorModule.Burn entry, which means
	// the netuid does not exist on this chain.
	ErrBurnNotSet = errors.New("burn cost not set for netuid")

	// ErrStreamClosed marks a finalized-head subscription whose channel ended.
	ErrStreamClosed = errors.New("finalized head stream closed")
)

// StreamError wraps a broken block subscription. The stream is not
// restartable; callers must treat this as fatal.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("finalized head stream broken: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// SubmitError wraps a failed extrinsic submission. Transient: the next block
// tick may succeed.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("extrinsic submission failed: %v", e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// FinalityReason classifies how a watched extrinsic failed to finalize
// successfully.
type FinalityReason string

const (
	ReasonExtrinsicFailed FinalityReason = "extrinsic failed"
	ReasonDropped         FinalityReason = "dropped from the transaction pool"
	ReasonInvalid         FinalityReason = "invalid"
	ReasonUsurped         FinalityReason = "usurped by a conflicting extrinsic"
	ReasonTimeout         FinalityReason = "finality timeout"
	ReasonWatchBroken     FinalityReason = "watch subscription broken"
)

// FinalityError wraps a failed finality wait. Transient: the controller logs
// it and continues on the next block.
type FinalityError struct {
	Reason FinalityReason
	Detail string
}

func (e *FinalityError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("finality wait failed: %s", e.Reason)
	}
	return fmt.Sprintf("finality wait failed: %s: %s", e.Reason, e.Detail)
}
