// Package config loads and validates the registration plan.
package config

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"os"

	"github.com/bytedance/sonic"
	"github.com/caarlos0/env/v11"
)

const (
	// DefaultMaxCostRao caps the acceptable burn cost at 5 TAO.
	DefaultMaxCostRao = 5_000_000_000

	// DefaultChainEndpoint is the public finney entrypoint.
	DefaultChainEndpoint = "wss://entrypoint-finney.opentensor.ai:443"

	raoPerTao = 1_000_000_000
)

// Plan holds everything a registration run needs. Coldkey and Hotkey are
// secret URIs and must never be logged or serialized back out of the process.
type Plan struct {
	Coldkey       string  `env:"BURNREG_COLDKEY"        json:"coldkey"`
	Hotkey        string  `env:"BURNREG_HOTKEY"         json:"hotkey"`
	Netuid        uint16  `env:"BURNREG_NETUID"         json:"netuid"`
	MaxCostRao    uint64  `env:"BURNREG_MAX_COST"       json:"maxCost"`
	ChainEndpoint string  `env:"BURNREG_CHAIN_ENDPOINT" json:"chainEndpoint"`
	Seed          uint64  `env:"BURNREG_SEED"           json:"seed"` // accepted, unused
	TipTao        float64 `env:"BURNREG_TIP_TAO"        json:"tipTao"`
}

// Load builds a plan from defaults, an optional JSON plan file, and the
// environment, in that order. Flag overrides are applied by the caller, so
// the overall precedence is flag > env > plan file > default.
func Load(planPath string) (*Plan, error) {
	p := &Plan{
		MaxCostRao:    DefaultMaxCostRao,
		ChainEndpoint: DefaultChainEndpoint,
	}

	if planPath != "" {
		raw, err := os.ReadFile(planPath)
		if err != nil {
			return nil, fmt.Errorf("read plan file: %w", err)
		}
		if err := sonic.Unmarshal(raw, p); err != nil {
			return nil, fmt.Errorf("parse plan file %s: %w", planPath, err)
		}
	}

	if err := env.Parse(p); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return p, nil
}

// Validate checks the plan once, before the loop begins.
func (p *Plan) Validate() error {
	if p.Coldkey == "" {
		return errors.New("coldkey is required")
	}
	if p.Hotkey == "" {
		return errors.New("hotkey is required")
	}
	if p.ChainEndpoint == "" {
		return errors.New("chain endpoint is required")
	}
	if _, err := p.TipRao(); err != nil {
		return err
	}
	return nil
}

// TipRao converts the TAO tip into rao (1 TAO = 10^9 rao), truncating toward
// zero. Returns nil when no tip is set so callers can skip the tip entirely.
func (p *Plan) TipRao() (*big.Int, error) {
	if math.IsNaN(p.TipTao) || math.IsInf(p.TipTao, 0) {
		return nil, fmt.Errorf("tip must be finite, got %v", p.TipTao)
	}
	if p.TipTao < 0 {
		return nil, fmt.Errorf("tip must be non-negative, got %v", p.TipTao)
	}
	if p.TipTao == 0 {
		return nil, nil
	}
	rao, _ := new(big.Float).Mul(big.NewFloat(p.TipTao), big.NewFloat(raoPerTao)).Int(nil)
	return rao, nil
}
