package cmd

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mikaelmello/pingmon/core"
)

var settings = core.DefaultSettings()

// verbosity raises the logging level above warnings, once per repetition of the flag.
var verbosity int

var rootCmd = &cobra.Command{
	Use:   "pingmon",
	Short: "pingmon checks that a host answers ICMP echo requests",
	Long: "pingmon sends batches of ICMP echo requests over a raw socket and reports whether the " +
		"destination replied in time, once or continuously. It needs the privilege to open raw sockets.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings.LoggingLevel = uint32(min(int(log.WarnLevel)+verbosity, int(log.TraceLevel)))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&settings.Interface, "interface", "I", settings.Interface, "network interface to bind the socket to")
	flags.IntVarP(&settings.PayloadSize, "payload-size", "s", settings.PayloadSize, "number of data bytes in every echo request")
	flags.DurationVar(&settings.PollInterval, "poll-interval", settings.PollInterval, "pause between two reads of an empty socket")
	flags.CountVarP(&verbosity, "verbose", "v", "log more details, repeat for more")

	rootCmd.AddCommand(probeCmd, monitorCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// newProber creates the prober used by the commands, replaced in tests.
var newProber = core.NewProber

// defaultTimeout is used by both commands when no duration flag is given.
const defaultTimeout = 2 * time.Second
