package main

import (
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/aberro/barocpu/internal/cpu"
)

func newRunCmd() *cobra.Command {
	var multiplier int
	var maxTicks int

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Assemble and run a program to completion or until it stalls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProcessor(args[0], multiplier, cpu.DebugNone)
			if err != nil {
				return err
			}

			// The tight tick loop below allocates nothing long-lived;
			// disabling GC for its duration avoids pauses mid-run and
			// restores the prior percentage once the program halts.
			prev := debug.SetGCPercent(-1)
			defer debug.SetGCPercent(prev)

			for tick := 0; tick < maxTicks && p.Working; tick++ {
				if err := p.Cycle(); err != nil {
					return err
				}
				if p.Underloaded {
					log.WithField("ip", p.IP).Warn("stalled waiting on memory or a channel; no host wired to satisfy it")
					break
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&multiplier, "multiplier", 8, "fetch/execute/writeback sub-steps per tick (1-16)")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 1_000_000, "safety cap on ticks run")
	return cmd
}
