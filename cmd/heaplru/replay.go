package main

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"heaplru/internal/trace"
)

func newReplayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Replay a synthetic uniform trace and print miss counts per capacity",
		Long: `Replay generates a uniform random access trace, replays it against one
cache per capacity (find, insert on miss) and prints one ';'-separated row per
capacity: accesses;keys;capacity;misses;missrate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := trace.Spec{
				Accesses: a.cfg.Accesses,
				Keys:     a.cfg.Keys,
				Seed:     a.cfg.Seed,
				Prefill:  a.cfg.Prefill,
				Workers:  a.cfg.Workers,
				Logger:   a.log.WithName("replay"),
			}

			results, err := trace.Sweep(cmd.Context(), spec, a.cfg.ReplayCapacities())
			if err != nil {
				return err
			}

			return writeResults(cmd.OutOrStdout(), results)
		},
	}
}

func writeResults(w io.Writer, results []trace.Result) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write([]string{"accesses", "keys", "capacity", "misses", "missrate"}); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Accesses),
			strconv.Itoa(r.Keys),
			strconv.Itoa(r.Capacity),
			strconv.Itoa(r.Misses),
			strconv.FormatFloat(r.MissRate(), 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
