package chain

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// BurnedRegisterCall builds SubtensorModule.burned_register(netuid, hotkey).
// The call is pure data over immutable inputs; callers build it once and
// reuse it across attempts.
func (c *Client) BurnedRegisterCall(netuid uint16, hotkeyPub []byte) (types.Call, error) {
	hotkey, err := types.NewAccountID(hotkeyPub)
	if err != nil {
		return types.Call{}, fmt.Errorf("hotkey public key: %w", err)
	}
	call, err := types.NewCall(c.meta, "SubtensorModule.burned_register", netuid, *hotkey)
	if err != nil {
		return types.Call{}, fmt.Errorf("build burned_register call: %w", err)
	}
	return call, nil
}

// ForceBatchCall wraps inner calls in Utility.force_batch, which runs every
// item and reports per-item outcomes instead of stopping at the first
// failure. Not reachable from the CLI; the registrar submits single calls.
func (c *Client) ForceBatchCall(calls []types.Call) (types.Call, error) {
	call, err := types.NewCall(c.meta, "Utility.force_batch", calls)
	if err != nil {
		return types.Call{}, fmt.Errorf("build force_batch call: %w", err)
	}
	return call, nil
}
