// Package chain is the substrate gateway for the registration agent: a
// single WebSocket JSON-RPC session offering finalized-block subscription,
// dynamic storage reads, and signed extrinsic submission watched to finality.
package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/retriever"
	regstate "github.com/centrifuge/go-substrate-rpc-client/v4/registry/state"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/rs/zerolog/log"
)

// Retry posture for storage reads. Submissions are never retried here; the
// controller owns retry-by-continuing semantics.
var (
	rtyAtt = retry.Attempts(3)
	rtyDel = retry.Delay(400 * time.Millisecond)
	rtyErr = retry.LastErrorOnly(true)
)

// Client is a live session with a substrate node. Safe for concurrent use by
// the controller and its submission goroutine.
type Client struct {
	api         *gsrpc.SubstrateAPI
	meta        *types.Metadata
	genesisHash types.Hash
	runtime     *types.RuntimeVersion
	events      retriever.EventRetriever
}

// Dial connects to the node and loads everything call building, storage key
// derivation, signing, and dynamic event decoding need. Connection or
// handshake failures are fatal to the caller.
func Dial(endpoint string) (*Client, error) {
	api, err := gsrpc.NewSubstrateAPI(endpoint)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", endpoint, err)
	}

	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	genesisHash, err := api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return nil, fmt.Errorf("fetch genesis hash: %w", err)
	}

	runtime, err := api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return nil, fmt.Errorf("fetch runtime version: %w", err)
	}

	events, err := retriever.NewDefaultEventRetriever(regstate.NewEventProvider(api.RPC.State), api.RPC.State)
	if err != nil {
		return nil, fmt.Errorf("init event retriever: %w", err)
	}

	log.Info().
		Str("endpoint", endpoint).
		Str("spec_name", runtime.SpecName).
		Uint32("spec_version", uint32(runtime.SpecVersion)).
		Msg("chain session established")

	return &Client{
		api:         api,
		meta:        meta,
		genesisHash: genesisHash,
		runtime:     runtime,
		events:      events,
	}, nil
}

// SubscribeFinalized opens the finalized-head stream. The stream is not
// restartable: once Next returns a StreamError the session is done.
func (c *Client) SubscribeFinalized() (*HeadStream, error) {
	sub, err := c.api.RPC.Chain.SubscribeFinalizedHeads()
	if err != nil {
		return nil, &StreamError{Err: err}
	}
	return &HeadStream{sub: sub}, nil
}

// BurnCost reads SubtensorModule.Burn for the netuid at the latest block.
// Transport hiccups are retried a few times; a missing entry surfaces as
// ErrBurnNotSet.
func (c *Client) BurnCost(ctx context.Context, netuid uint16) (uint64, error) {
	arg, err := codec.Encode(netuid)
	if err != nil {
		return 0, fmt.Errorf("encode netuid: %w", err)
	}
	key, err := types.CreateStorageKey(c.meta, "SubtensorModule", "Burn", arg)
	if err != nil {
		return 0, fmt.Errorf("derive Burn storage key: %w", err)
	}

	var burn types.U64
	var found bool
	err = retry.Do(func() error {
		var rerr error
		found, rerr = c.api.RPC.State.GetStorageLatest(key, &burn)
		return rerr
	}, rtyAtt, rtyDel, rtyErr, retry.Context(ctx))
	if err != nil {
		return 0, fmt.Errorf("read SubtensorModule.Burn: %w", err)
	}
	if !found {
		return 0, ErrBurnNotSet
	}
	return uint64(burn), nil
}

// accountNonce reads the signer's next nonce from System.Account. A missing
// entry means the account has never transacted, nonce zero.
func (c *Client) accountNonce(pub []byte) (uint32, error) {
	key, err := types.CreateStorageKey(c.meta, "System", "Account", pub)
	if err != nil {
		return 0, fmt.Errorf("derive Account storage key: %w", err)
	}

	var info types.AccountInfo
	var found bool
	err = retry.Do(func() error {
		var rerr error
		found, rerr = c.api.RPC.State.GetStorageLatest(key, &info)
		return rerr
	}, rtyAtt, rtyDel, rtyErr)
	if err != nil {
		return 0, fmt.Errorf("read System.Account: %w", err)
	}
	if !found {
		return 0, nil
	}
	return uint32(info.Nonce), nil
}
