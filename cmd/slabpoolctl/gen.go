package main

import (
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/slabpool/internal/workload"
)

func newGenCmd() *cobra.Command {
	var (
		ops      int
		maxSize  int
		seed     uint64
		poolSize int
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Print a random balanced trace as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workload.Generate(seed, ops, maxSize, poolSize).Encode(cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&ops, "ops", 100, "number of ops before the final frees")
	cmd.Flags().IntVar(&maxSize, "max-size", 256, "largest allocation size")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&poolSize, "pool-size", 4096, "pool budget in bytes")
	return cmd
}
