package cmd

import (
	"github.com/spf13/cobra"
)

var (
	monitorInterval  = defaultTimeout
	tolerateTimeouts bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <ipv4>",
	Short: "Probe the destination once per interval until interrupted or unreachable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner(args[0], settings, monitorInterval, tolerateTimeouts, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		r.Start()
		return r.Wait()
	},
}

func init() {
	monitorCmd.Flags().DurationVarP(&monitorInterval, "interval", "i", monitorInterval,
		"time between two attempts, also the timeout of every attempt")
	monitorCmd.Flags().BoolVar(&tolerateTimeouts, "tolerate-timeouts", false,
		"keep monitoring when an attempt times out instead of exiting")
}
