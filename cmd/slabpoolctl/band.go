package main

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/slabpool"
)

func newBandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "band <pool-size>",
		Short: "Show the size classes preallocated for a pool budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrapf(err, "pool size %q", args[0])
			}
			pool := slabpool.NewPool(size, slabpool.WithSystemAllocator(slabpool.NewCountingAllocator(nil)))
			defer pool.Release()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pool=%d min_block=%d max_block=%d preallocated=%d\n",
				pool.PoolSize(), pool.MinBlockSize(), pool.MaxBlockSize(), pool.MaxNumDataBlocks())
			pool.WriteStatus(out)
			return nil
		},
	}
}
