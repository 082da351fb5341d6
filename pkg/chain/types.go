package chain

import (
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// Head identifies a finalized block observed on the subscription.
type Head struct {
	Number uint64
	Hash   types.Hash
}

// Event is one decoded chain event scoped to a single extrinsic.
type Event struct {
	Pallet  string
	Variant string
	// Fields is a best-effort rendering of the decoded event fields,
	// used only in result reasons and logs.
	Fields string
}

// Label renders the event as "Pallet::Variant".
func (e Event) Label() string {
	return e.Pallet + "::" + e.Variant
}

// Finalized describes an extrinsic that landed in a finalized block with
// System::ExtrinsicSuccess.
type Finalized struct {
	BlockHash     types.Hash
	ExtrinsicHash types.Hash
	Events        []Event
}

// TxOptions carries per-submission parameters.
type TxOptions struct {
	// TipRao is the plain tip in rao. Nil or zero means no tip.
	TipRao *big.Int
}
