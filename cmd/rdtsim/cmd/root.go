// Package cmd provides the command-line interface of the simulator.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/sarchlab/rdtsim/simulation"
	"github.com/sarchlab/rdtsim/tracing"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

type options struct {
	config     simulation.Config
	traceLevel int

	record     bool
	recordFile string
	uniqueIDs  bool

	monitor     bool
	monitorPort int
	openBrowser bool
}

// newRootCommand creates the command. Flag defaults come from the
// environment.
func newRootCommand(defaults simulation.Config) *cobra.Command {
	opts := &options{config: defaults}

	rootCmd := &cobra.Command{
		Use:   "rdtsim",
		Short: "rdtsim simulates the alternating-bit protocol over a lossy link.",
		Long: `rdtsim simulates the alternating-bit protocol between a ` +
			`sender A and a receiver B. The link between them loses and ` +
			`corrupts packets at configurable rates. Runs with the same seed ` +
			`are reproducible.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
	}

	f := rootCmd.Flags()
	f.IntVarP(&opts.config.MaxMessages, "messages", "n",
		defaults.MaxMessages, "number of messages to simulate")
	f.Float64Var(&opts.config.LossProbability, "loss",
		defaults.LossProbability, "packet loss probability")
	f.Float64Var(&opts.config.CorruptionProbability, "corrupt",
		defaults.CorruptionProbability, "packet corruption probability")
	f.Float64Var(&opts.config.MeanInterarrival, "lambda",
		defaults.MeanInterarrival,
		"average time between messages from the upper layer")
	f.Uint64Var(&opts.config.Seed, "seed", defaults.Seed,
		"random seed, 0 seeds from the clock")
	f.IntVarP(&opts.traceLevel, "trace", "t", int(defaults.TraceLevel),
		"trace level from 0 (silent) to 3 (packet dumps)")
	f.Float64Var(&opts.config.MaxSimTime, "max-time", defaults.MaxSimTime,
		"stop before the first event after this time, 0 for no limit")
	f.BoolVar(&opts.config.DrainInFlight, "drain", defaults.DrainInFlight,
		"let the last message finish its round trip after the limit")
	f.Float64Var(&opts.config.RetransmitTimeout, "timeout",
		defaults.RetransmitTimeout,
		"resend after this much time without an ACK, 0 disables the timer")
	f.BoolVar(&opts.record, "record", false,
		"record events into a SQLite file")
	f.StringVar(&opts.recordFile, "record-file", "",
		"name of the recording without the .sqlite3 suffix")
	f.BoolVar(&opts.uniqueIDs, "unique-ids", false,
		"give events globally unique IDs instead of sequential ones")
	f.BoolVar(&opts.monitor, "monitor", false,
		"serve the state of the simulation over HTTP")
	f.IntVar(&opts.monitorPort, "monitor-port", 0,
		"port of the monitoring server, 0 for a random port")
	f.BoolVar(&opts.openBrowser, "open-browser", false,
		"open the monitoring page in the default browser")

	return rootCmd
}

func run(out io.Writer, opts *options) error {
	opts.config.TraceLevel = tracing.Level(opts.traceLevel)

	if opts.openBrowser && !opts.monitor {
		return errors.New("--open-browser requires --monitor")
	}

	if opts.config.TraceLevel >= tracing.LevelNotice {
		printBanner(out, opts.config)
	}

	b := simulation.MakeBuilder().
		WithConfig(opts.config).
		WithOutput(out)

	if opts.uniqueIDs {
		b = b.WithParallelIDGenerator()
	}

	if opts.record || opts.recordFile != "" {
		b = b.WithRecording(opts.recordFile)
	}

	if opts.monitor {
		b = b.WithMonitor(opts.monitorPort)
		if opts.openBrowser {
			b = b.WithBrowser()
		}
	}

	s, err := b.Build()
	if err != nil {
		return err
	}

	var result *multierror.Error

	if err := s.Run(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := s.Terminate(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func printBanner(out io.Writer, c simulation.Config) {
	fmt.Fprintln(out,
		"-----  Alternating Bit Protocol Network Simulator -------- ")
	fmt.Fprintf(out, "Number of messages to simulate: %d\n", c.MaxMessages)
	fmt.Fprintf(out, "Packet loss probability: %f\n", c.LossProbability)
	fmt.Fprintf(out, "Packet corruption probability: %f\n",
		c.CorruptionProbability)
	fmt.Fprintf(out, "Average time between messages from sender's layer5: %f\n",
		c.MeanInterarrival)
	fmt.Fprintf(out, "TRACE: %d\n", c.TraceLevel)
}

// Execute loads the .env file, builds the root command and runs it.
func Execute() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("cannot load .env: %v", err)
	}

	defaults, err := configFromEnv(os.LookupEnv)
	if err != nil {
		log.Printf("ignoring malformed environment: %v", err)
	}

	if err := newRootCommand(defaults).Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
