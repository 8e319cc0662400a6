package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"Annular/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "annular",
		Short:        "Annular two-phase flow film thickness and pressure gradient",
		SilenceUsage: true,
	}
	var configPath string
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "solver defaults (ini)")

	rootCmd.AddCommand(solveCmd(&configPath))
	rootCmd.AddCommand(pointCmd(&configPath))
	rootCmd.AddCommand(substancesCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func solveCmd(configPath *string) *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve [case.yaml]",
		Short: "Solve every operating point of a case file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.Context(), *configPath, args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: table, json, xlsx or pdf")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (required for xlsx and pdf)")
	cmd.Flags().StringVar(&opts.xSpan, "x-span", "", "replace the quality list with lo:hi:n evenly spaced values")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "failed point policy: abort or record")
	return cmd
}

func pointCmd(configPath *string) *cobra.Command {
	var p pointOptions

	cmd := &cobra.Command{
		Use:   "point",
		Short: "Solve a single operating point from explicit properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPoint(cmd.Context(), *configPath, p, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.Float64Var(&p.jg, "jg", 0, "gas superficial velocity, m/s")
	f.Float64Var(&p.jl, "jl", 0, "liquid superficial velocity, m/s")
	f.Float64VarP(&p.d, "diameter", "d", 0, "channel diameter, m (default from config)")
	f.StringVar(&p.substance, "substance", "", "substance for property lookup")
	f.Float64Var(&p.temperature, "temperature", 0, "saturation temperature, °C")
	f.Float64Var(&p.rhoL, "rho-l", 0, "liquid density, kg/m3")
	f.Float64Var(&p.rhoG, "rho-g", 0, "gas density, kg/m3")
	f.Float64Var(&p.muL, "mu-l", 0, "liquid viscosity, Pa s")
	f.Float64Var(&p.muG, "mu-g", 0, "gas viscosity, Pa s")
	f.StringVar(&p.friction, "friction", "", "friction correlation: blasius or filonenko")
	cmd.MarkFlagRequired("jg")
	cmd.MarkFlagRequired("jl")
	return cmd
}

func substancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "substances",
		Short: "List substances known to the property table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSubstances(cmd.OutOrStdout())
		},
	}
}
