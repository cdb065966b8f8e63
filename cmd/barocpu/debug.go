package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aberro/barocpu/internal/cpu"
)

func newDebugCmd() *cobra.Command {
	var multiplier int

	cmd := &cobra.Command{
		Use:   "debug <file>",
		Short: "Step a program one instruction at a time from an interactive REPL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProcessor(args[0], multiplier, cpu.DebugStepByStep)
			if err != nil {
				return err
			}
			return runDebugREPL(p)
		},
	}
	cmd.Flags().IntVar(&multiplier, "multiplier", 8, "fetch/execute/writeback sub-steps per tick (1-16)")
	return cmd
}

// runDebugREPL drives a step/breakpoint console, in the spirit of the
// corpus's step-by-step debug mode: one instruction per "step", a free-run
// until a halt, a stall, or a breakpoint, and commands to satisfy a stalled
// memory read or deliver a channel signal. Breakpoints are checked against
// ip only between ticks, so one passed in the middle of a tick does not stop
// the run.
func runDebugREPL(p *cpu.Processor) error {
	breakpoints := map[uint32]bool{}
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("barocpu debug REPL -- step, run, break <n>, mem <raw>, chan <n> <raw>, print, quit")

	for {
		fmt.Printf("(ip=%d)> ", p.IP)
		if !scanner.Scan() {
			return nil
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "step", "s":
			p.Start()
			if err := p.Cycle(); err != nil {
				fmt.Println(err)
				continue
			}
			printState(p)

		case "run", "r":
			p.DebugMode = cpu.DebugNone
			p.Start()
			for p.Working {
				if err := p.Cycle(); err != nil {
					fmt.Println(err)
					break
				}
				if p.Underloaded || breakpoints[p.IP] {
					break
				}
			}
			p.DebugMode = cpu.DebugStepByStep
			printState(p)

		case "break", "b":
			if len(fields) < 2 {
				fmt.Println("usage: break <instruction index>")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("not a number:", fields[1])
				continue
			}
			breakpoints[uint32(n)] = true

		case "mem":
			if len(fields) < 2 {
				fmt.Println("usage: mem <raw value>")
				continue
			}
			p.Memory(strings.Join(fields[1:], " "))

		case "chan":
			if len(fields) < 3 {
				fmt.Println("usage: chan <index> <raw value>")
				continue
			}
			idx, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("not a number:", fields[1])
				continue
			}
			if err := p.Channel(idx, strings.Join(fields[2:], " ")); err != nil {
				fmt.Println(err)
			}

		case "print", "p":
			printState(p)

		case "quit", "q":
			return nil

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func printState(p *cpu.Processor) {
	fmt.Printf("ip=%d working=%v underloaded=%v flags={CF:%v ZF:%v SF:%v OF:%v}\n",
		p.IP, p.Working, p.Underloaded, p.Flags.CF, p.Flags.ZF, p.Flags.SF, p.Flags.OF)
	fmt.Printf("ir=%v\nfr=%v\nsr=%v\n", p.IR, p.FR, p.SR)
}
