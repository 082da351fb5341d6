package registrar

import (
	"context"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/subnetops/burnreg/pkg/chain"
)

// HeadSource yields finalized block heads in chain order.
type HeadSource interface {
	Next(ctx context.Context) (chain.Head, error)
	Close()
}

// FinalityWatcher follows one submitted extrinsic to finality.
type FinalityWatcher interface {
	Hash() types.Hash
	WaitFinalizedSuccess(ctx context.Context) (chain.Finalized, error)
}

// Gateway is the slice of the chain client the registrar needs. Tests swap
// in fakes; production uses WrapClient.
type Gateway interface {
	SubscribeFinalized() (HeadSource, error)
	BurnCost(ctx context.Context, netuid uint16) (uint64, error)
	Submit(ctx context.Context, call types.Call, pair signature.KeyringPair, opts chain.TxOptions) (FinalityWatcher, error)
}

// WrapClient adapts the concrete chain client to the Gateway interface.
func WrapClient(c *chain.Client) Gateway {
	return clientGateway{c: c}
}

type clientGateway struct {
	c *chain.Client
}

func (g clientGateway) SubscribeFinalized() (HeadSource, error) {
	stream, err := g.c.SubscribeFinalized()
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (g clientGateway) BurnCost(ctx context.Context, netuid uint16) (uint64, error) {
	return g.c.BurnCost(ctx, netuid)
}

func (g clientGateway) Submit(ctx context.Context, call types.Call, pair signature.KeyringPair, opts chain.TxOptions) (FinalityWatcher, error) {
	tracker, err := g.c.Submit(ctx, call, pair, opts)
	if err != nil {
		return nil, err
	}
	return tracker, nil
}
