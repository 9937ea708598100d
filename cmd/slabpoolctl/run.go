package main

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/slabpool"
	"github.com/pavanmanishd/slabpool/internal/workload"
	"github.com/pavanmanishd/slabpool/promstats"
)

func newRunCmd(logLevel *string) *cobra.Command {
	var (
		metrics  bool
		poolSize int
	)
	cmd := &cobra.Command{
		Use:   "run <workload.toml>",
		Short: "Replay a trace and print the pool status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := workload.Load(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pool-size") {
				w.PoolSize = poolSize
				if err := w.Validate(); err != nil {
					return errors.Wrapf(err, "workload %s", args[0])
				}
			}
			logger, err := newLogger(cmd.ErrOrStderr(), *logLevel)
			if err != nil {
				return err
			}
			pool, err := w.NewPool(slabpool.WithLogger(logger))
			if err != nil {
				return err
			}
			defer pool.Release()

			res, err := workload.Run(cmd.Context(), pool, w)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "allocs=%d frees=%d reused=%d live=%d peak_live_bytes=%d\n",
				res.Allocs, res.Frees, res.Reused, res.Live, res.PeakLiveBytes)
			pool.WriteStatus(out)
			if metrics {
				return writeMetrics(out, pool)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print Prometheus metrics after the replay")
	cmd.Flags().IntVar(&poolSize, "pool-size", 0, "override the trace's pool size")
	return cmd
}

func writeMetrics(out io.Writer, src promstats.StatsSource) error {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(promstats.NewCollector(src, "")); err != nil {
		return errors.Wrap(err, "register collector")
	}
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}
