// Command barocpu assembles and runs programs for the fantasy 32-bit
// controller implemented in internal/cpu.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "barocpu",
		Short:         "Assemble and run programs for the fantasy controller CPU",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			} else {
				log.SetLevel(logrus.InfoLevel)
			}
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	cmd.AddCommand(newAssembleCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newDebugCmd())
	return cmd
}
