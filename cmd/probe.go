package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mikaelmello/pingmon/core"
)

var probeTimeout = defaultTimeout

var probeCmd = &cobra.Command{
	Use:   "probe <ipv4>",
	Short: "Check once whether the destination is reachable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dst, err := core.ParseIPv4(args[0])
		if err != nil {
			return err
		}

		p, err := newProber(dst, settings)
		if err != nil {
			return err
		}
		defer p.Close()

		pr := newPrinter(cmd.OutOrStdout())
		pr.printOnStart(p)
		p.AddOnProbe(pr.printOnProbe)

		return p.Probe(probeTimeout)
	},
}

func init() {
	probeCmd.Flags().DurationVarP(&probeTimeout, "timeout", "W", probeTimeout, "time to wait for a reply")
}
