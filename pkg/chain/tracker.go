package chain

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry"
	"github.com/centrifuge/go-substrate-rpc-client/v4/rpc/author"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"golang.org/x/crypto/blake2b"
)

// Submit signs the call with the pair and submits it, returning a Tracker
// watching the extrinsic toward finality. The extrinsic is immortal and
// carries the plain tip from opts when one is set.
func (c *Client) Submit(ctx context.Context, call types.Call, pair signature.KeyringPair, opts TxOptions) (*Tracker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nonce, err := c.accountNonce(pair.PublicKey)
	if err != nil {
		return nil, &SubmitError{Err: err}
	}

	tip := types.NewUCompactFromUInt(0)
	if opts.TipRao != nil && opts.TipRao.Sign() > 0 {
		tip = types.NewUCompact(opts.TipRao)
	}

	ext := types.NewExtrinsic(call)
	sigOpts := types.SignatureOptions{
		BlockHash:          c.genesisHash,
		Era:                types.ExtrinsicEra{IsImmortalEra: true},
		GenesisHash:        c.genesisHash,
		Nonce:              types.NewUCompactFromUInt(uint64(nonce)),
		SpecVersion:        c.runtime.SpecVersion,
		Tip:                tip,
		TransactionVersion: c.runtime.TransactionVersion,
	}
	if err := ext.Sign(pair, sigOpts); err != nil {
		return nil, &SubmitError{Err: fmt.Errorf("sign extrinsic: %w", err)}
	}

	encoded, err := codec.Encode(ext)
	if err != nil {
		return nil, &SubmitError{Err: fmt.Errorf("encode extrinsic: %w", err)}
	}
	sum := blake2b.Sum256(encoded)

	sub, err := c.api.RPC.Author.SubmitAndWatchExtrinsic(ext)
	if err != nil {
		return nil, &SubmitError{Err: err}
	}

	return &Tracker{
		client:  c,
		sub:     sub,
		encoded: encoded,
		hash:    types.NewHash(sum[:]),
	}, nil
}

// Tracker follows one submitted extrinsic to finality.
type Tracker struct {
	client  *Client
	sub     *author.ExtrinsicStatusSubscription
	encoded []byte
	hash    types.Hash
}

// Hash is the blake2b-256 hash of the signed extrinsic.
func (t *Tracker) Hash() types.Hash {
	return t.hash
}

// WaitFinalizedSuccess blocks until the extrinsic is included in a finalized
// block and System::ExtrinsicSuccess fired for it, then returns the
// extrinsic's decoded event list. Pool eviction, invalidity, usurpation,
// finality timeout, and System::ExtrinsicFailed all surface as FinalityError.
func (t *Tracker) WaitFinalizedSuccess(ctx context.Context) (Finalized, error) {
	defer t.sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return Finalized{}, ctx.Err()
		case status, ok := <-t.sub.Chan():
			if !ok {
				return Finalized{}, &FinalityError{Reason: ReasonWatchBroken}
			}
			switch {
			case status.IsFinalized:
				return t.collect(status.AsFinalized)
			case status.IsDropped:
				return Finalized{}, &FinalityError{Reason: ReasonDropped}
			case status.IsInvalid:
				return Finalized{}, &FinalityError{Reason: ReasonInvalid}
			case status.IsUsurped:
				return Finalized{}, &FinalityError{Reason: ReasonUsurped, Detail: status.AsUsurped.Hex()}
			case status.IsFinalityTimeout:
				return Finalized{}, &FinalityError{Reason: ReasonTimeout}
			}
			// Ready, Broadcast, InBlock, Retracted: keep waiting.
		case err := <-t.sub.Err():
			return Finalized{}, &FinalityError{Reason: ReasonWatchBroken, Detail: err.Error()}
		}
	}
}

func (t *Tracker) collect(blockHash types.Hash) (Finalized, error) {
	index, err := t.extrinsicIndex(blockHash)
	if err != nil {
		// A finalized status for an extrinsic missing from the block means
		// the fork carrying it was evicted.
		return Finalized{}, &FinalityError{Reason: ReasonWatchBroken, Detail: err.Error()}
	}

	events, err := t.client.extrinsicEvents(blockHash, index)
	if err != nil {
		return Finalized{}, &FinalityError{Reason: ReasonWatchBroken, Detail: err.Error()}
	}

	for _, ev := range events {
		if ev.Pallet == "System" && ev.Variant == "ExtrinsicFailed" {
			return Finalized{}, &FinalityError{Reason: ReasonExtrinsicFailed, Detail: ev.Fields}
		}
	}

	return Finalized{BlockHash: blockHash, ExtrinsicHash: t.hash, Events: events}, nil
}

// extrinsicIndex locates our extrinsic in the finalized block by comparing
// encoded bytes, which pins the event phase filter.
func (t *Tracker) extrinsicIndex(blockHash types.Hash) (uint32, error) {
	block, err := t.client.api.RPC.Chain.GetBlock(blockHash)
	if err != nil {
		return 0, fmt.Errorf("fetch finalized block: %w", err)
	}
	for i := range block.Block.Extrinsics {
		enc, err := codec.Encode(block.Block.Extrinsics[i])
		if err != nil {
			continue
		}
		if bytes.Equal(enc, t.encoded) {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("extrinsic %s not found in block %s", t.hash.Hex(), blockHash.Hex())
}

// extrinsicEvents decodes the block's events through the metadata-driven
// registry, so SubtensorModule variants resolve without static pallet types,
// and keeps only those attached to the given extrinsic index.
func (c *Client) extrinsicEvents(blockHash types.Hash, index uint32) ([]Event, error) {
	raw, err := c.events.GetEvents(blockHash)
	if err != nil {
		return nil, fmt.Errorf("decode block events: %w", err)
	}

	var out []Event
	for _, ev := range raw {
		if ev.Phase == nil || !ev.Phase.IsApplyExtrinsic || ev.Phase.AsApplyExtrinsic != index {
			continue
		}
		pallet, variant := splitEventName(string(ev.Name))
		out = append(out, Event{
			Pallet:  pallet,
			Variant: variant,
			Fields:  renderFields(ev.Fields),
		})
	}
	return out, nil
}

func splitEventName(name string) (string, string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func renderFields(fields registry.DecodedFields) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", f.Name, f.Value))
	}
	return strings.Join(parts, ", ")
}
