// Package registrar drives the registration loop: watch finalized blocks,
// gate on the current burn cost, submit burned_register, and stop on the
// first finalized success.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/subnetops/burnreg/pkg/chain"
	"github.com/subnetops/burnreg/pkg/keyring"
)

// submissionFloor is the minimum spacing between consecutive submission
// attempts. One second stays under one extrinsic per ~6s block even when the
// finality wait fails fast, and matches the cost-gate backoff.
const submissionFloor = time.Second

// Plan is the immutable input of a registration run.
type Plan struct {
	Netuid     uint16
	MaxCostRao uint64
	TipRao     *big.Int // nil or zero: no tip
}

// Registrar owns the control loop. Loop state (attempt counter, last attempt
// time, termination flag) is mutated only on the Run goroutine; the
// subordinate submission goroutine reports through a channel.
type Registrar struct {
	plan    Plan
	gateway Gateway
	pair    keyring.Pair
	call    types.Call // burned_register payload, built once and shared
	clock   Clock

	attempts      uint64
	lastAttemptAt time.Time
	terminated    bool
}

// Option adjusts a Registrar at construction time.
type Option func(*Registrar)

// WithClock overrides the wall clock, used by tests.
func WithClock(c Clock) Option {
	return func(r *Registrar) { r.clock = c }
}

// New builds a Registrar around an established gateway, the coldkey signing
// pair, and a pre-built burned_register call.
func New(plan Plan, gw Gateway, pair keyring.Pair, call types.Call, opts ...Option) *Registrar {
	r := &Registrar{
		plan:    plan,
		gateway: gw,
		pair:    pair,
		call:    call,
		clock:   SystemClock(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Attempts returns the number of block ticks observed so far.
func (r *Registrar) Attempts() uint64 {
	return r.attempts
}

// Terminated reports whether a finalized registration ended the loop.
func (r *Registrar) Terminated() bool {
	return r.terminated
}

// Run executes the loop until the first finalized registration, a fatal
// chain-state error, a broken head stream, or context cancellation. After
// cancellation no new submission is issued, but an in-flight finality wait
// is drained so the operator learns whether the burn went through.
func (r *Registrar) Run(ctx context.Context) error {
	heads, err := r.gateway.SubscribeFinalized()
	if err != nil {
		return fmt.Errorf("subscribe finalized heads: %w", err)
	}
	defer heads.Close()

	log.Info().
		Uint16("netuid", r.plan.Netuid).
		Uint64("max_cost_rao", r.plan.MaxCostRao).
		Str("signer", r.pair.Address()).
		Msg("watching finalized blocks")

	// Anchor the rate limiter so a fast-failing first attempt still waits
	// out the floor.
	r.lastAttemptAt = r.clock.Now()

	for {
		head, err := heads.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("finalized head stream broken, giving up")
			return err
		}

		r.attempts++
		attemptLog := log.With().
			Uint64("attempt", r.attempts).
			Str("eastern_time", easternNow(r.clock)).
			Uint64("block", head.Number).
			Logger()
		attemptLog.Info().Msg("attempting registration")

		costStart := r.clock.Now()
		cost, err := r.gateway.BurnCost(ctx, r.plan.Netuid)
		if err != nil {
			if errors.Is(err, chain.ErrBurnNotSet) {
				attemptLog.Error().Err(err).Uint16("netuid", r.plan.Netuid).Msg("burn cost missing, netuid looks misconfigured")
			} else {
				attemptLog.Error().Err(err).Msg("burn cost read failed")
			}
			return err
		}
		attemptLog.Info().
			Uint64("burn_cost_rao", cost).
			Dur("cost_fetch", r.clock.Now().Sub(costStart)).
			Msg("current burn cost")

		if cost > r.plan.MaxCostRao {
			attemptLog.Warn().
				Uint64("burn_cost_rao", cost).
				Uint64("max_cost_rao", r.plan.MaxCostRao).
				Msg("burn cost above threshold, skipping attempt")
			r.clock.Sleep(ctx, submissionFloor)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		// Shutdown requested: issue no new submission.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fin, err := r.submitOnce(ctx, &attemptLog)
		if err == nil {
			out := chain.Interpret(fin.Events)
			attemptLog.Debug().Int("events", out.EventCount).Msg("processed extrinsic events")
			if out.Registered() {
				r.terminated = true
				attemptLog.Info().
					Str("extrinsic_hash", fin.ExtrinsicHash.Hex()).
					Str("block_hash", fin.BlockHash.Hex()).
					Msg("registration finalized")
				return nil
			}
			attemptLog.Warn().
				Str("extrinsic_hash", fin.ExtrinsicHash.Hex()).
				Msg("extrinsic finalized without a registration event, continuing")
		}

		// Rate limit: never less than the floor between submission attempts.
		if elapsed := r.clock.Now().Sub(r.lastAttemptAt); elapsed < submissionFloor {
			r.clock.Sleep(ctx, submissionFloor-elapsed)
		}
		r.lastAttemptAt = r.clock.Now()

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// submitOnce runs one submission attempt in a subordinate goroutine and
// waits for it. Exactly one submission is in flight at a time: parallel
// submissions could burn funds twice. The attempt runs on a context that
// survives shutdown, so cancellation never leaves the fate of an in-flight
// burn unknown.
func (r *Registrar) submitOnce(ctx context.Context, lg *zerolog.Logger) (chain.Finalized, error) {
	type attemptResult struct {
		fin chain.Finalized
		err error
	}

	waitCtx := context.WithoutCancel(ctx)
	done := make(chan attemptResult, 1)

	submitStart := r.clock.Now()
	go func() {
		watcher, err := r.gateway.Submit(waitCtx, r.call, r.pair.Keyring(), chain.TxOptions{TipRao: r.plan.TipRao})
		if err != nil {
			done <- attemptResult{err: err}
			return
		}
		lg.Info().
			Str("extrinsic_hash", watcher.Hash().Hex()).
			Dur("sign_submit", r.clock.Now().Sub(submitStart)).
			Msg("extrinsic submitted, awaiting finality")

		finalityStart := r.clock.Now()
		fin, err := watcher.WaitFinalizedSuccess(waitCtx)
		if err == nil {
			lg.Info().
				Dur("finality_wait", r.clock.Now().Sub(finalityStart)).
				Msg("extrinsic finalized")
		}
		done <- attemptResult{fin: fin, err: err}
	}()

	// No select on ctx here: the in-flight wait must run to completion.
	res := <-done
	if res.err != nil {
		var submitErr *chain.SubmitError
		var finErr *chain.FinalityError
		switch {
		case errors.As(res.err, &submitErr):
			lg.Error().Err(res.err).Msg("submission failed, continuing on next block")
		case errors.As(res.err, &finErr):
			lg.Error().Err(res.err).Msg("finality wait failed, continuing on next block")
		default:
			lg.Error().Err(res.err).Msg("registration attempt failed, continuing on next block")
		}
		return chain.Finalized{}, res.err
	}
	return res.fin, nil
}

// easternLocation is resolved once; a missing tzdata falls back to UTC
// rather than aborting a run.
var easternLocation = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}()

func easternNow(c Clock) string {
	return c.Now().In(easternLocation).Format("2006-01-02 15:04:05 MST-0700")
}
