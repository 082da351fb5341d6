package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/subnetops/burnreg/internal/config"
	"github.com/subnetops/burnreg/internal/registrar"
	"github.com/subnetops/burnreg/internal/utils/logger"
	"github.com/subnetops/burnreg/pkg/chain"
	"github.com/subnetops/burnreg/pkg/keyring"
)

func main() {
	logger.Init()

	var (
		planPath string
		flags    config.Plan
	)

	root := &cobra.Command{
		Use:           "burnreg",
		Short:         "register a hotkey on a subtensor subnet via burned_register",
		Long:          "burnreg watches finalized blocks and submits a signed burned_register extrinsic whenever the subnet's burn cost is within budget, exiting on the first finalized success.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := config.Load(planPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, plan, &flags)
			if err := plan.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), plan)
		},
	}

	root.Flags().StringVar(&flags.Coldkey, "coldkey", "", "signing credential URI (sensitive)")
	root.Flags().StringVar(&flags.Hotkey, "hotkey", "", "worker credential URI")
	root.Flags().Uint16Var(&flags.Netuid, "netuid", 0, "target subnetwork id")
	root.Flags().Uint64Var(&flags.MaxCostRao, "max-cost", config.DefaultMaxCostRao, "maximum acceptable burn cost in rao")
	root.Flags().StringVar(&flags.ChainEndpoint, "chain-endpoint", config.DefaultChainEndpoint, "node WebSocket URL")
	root.Flags().Uint64Var(&flags.Seed, "seed", 0, "reserved")
	root.Flags().Float64Var(&flags.TipTao, "tip-tao", 0, "priority tip in TAO")
	root.Flags().StringVar(&planPath, "plan", "", "optional JSON plan file")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("registration did not complete")
		os.Exit(1)
	}
}

// applyFlagOverrides copies only the flags the operator actually set, so the
// plan file and environment keep their values otherwise.
func applyFlagOverrides(cmd *cobra.Command, plan, flags *config.Plan) {
	f := cmd.Flags()
	if f.Changed("coldkey") {
		plan.Coldkey = flags.Coldkey
	}
	if f.Changed("hotkey") {
		plan.Hotkey = flags.Hotkey
	}
	if f.Changed("netuid") {
		plan.Netuid = flags.Netuid
	}
	if f.Changed("max-cost") {
		plan.MaxCostRao = flags.MaxCostRao
	}
	if f.Changed("chain-endpoint") {
		plan.ChainEndpoint = flags.ChainEndpoint
	}
	if f.Changed("seed") {
		plan.Seed = flags.Seed
	}
	if f.Changed("tip-tao") {
		plan.TipTao = flags.TipTao
	}
}

func run(ctx context.Context, plan *config.Plan) error {
	coldkey, err := keyring.FromSecret(plan.Coldkey)
	if err != nil {
		return fmt.Errorf("coldkey: %w", err)
	}
	hotkey, err := keyring.FromSecret(plan.Hotkey)
	if err != nil {
		return fmt.Errorf("hotkey: %w", err)
	}

	tipRao, err := plan.TipRao()
	if err != nil {
		return err
	}
	if tipRao != nil {
		log.Info().
			Float64("tip_tao", plan.TipTao).
			Str("tip_rao", tipRao.String()).
			Msg("priority tip set")
	}

	log.Info().
		Str("coldkey_address", coldkey.Address()).
		Str("hotkey_address", hotkey.Address()).
		Uint16("netuid", plan.Netuid).
		Uint64("max_cost_rao", plan.MaxCostRao).
		Str("endpoint", plan.ChainEndpoint).
		Msg("starting registration")

	client, err := chain.Dial(plan.ChainEndpoint)
	if err != nil {
		return err
	}

	// Pure data over immutable inputs; built once, shared across attempts.
	call, err := client.BurnedRegisterCall(plan.Netuid, hotkey.PublicKey())
	if err != nil {
		return err
	}

	reg := registrar.New(
		registrar.Plan{
			Netuid:     plan.Netuid,
			MaxCostRao: plan.MaxCostRao,
			TipRao:     tipRao,
		},
		registrar.WrapClient(client),
		coldkey,
		call,
	)
	if err := reg.Run(ctx); err != nil {
		return err
	}

	log.Info().Msg("registration process completed successfully")
	return nil
}
