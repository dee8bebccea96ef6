package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coreapi/codecamp"
)

const configFlag = "config"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "codecamp",
		Short: "codecamp serves the REST API to manage camps, talks and speakers.",
		Long: `codecamp stores camps with their location, talks and speakers in PostgreSQL
and exposes them as a REST API under /api.

Every configuration key can be set in the config file or
as an environment variable, e.g. CODECAMP_POSTGRES_HOST.`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	root.PersistentFlags().StringP(configFlag, "c", "", "path to a config file (yaml, json or toml)")

	return root
}

// NewCodecampCLI initialises the complete cli with its commands and returns the root command.
func NewCodecampCLI(osSignal <-chan os.Signal) *cobra.Command {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(Version("codecamp"))
	rootCmd.AddCommand(newServeCmd(osSignal))
	rootCmd.AddCommand(newMigrateCmd())

	return rootCmd
}

// Execute runs the codecamp cli.
func Execute() {
	if err := NewCodecampCLI(NewInterruptSignalChannel()).Execute(); err != nil {
		os.Exit(1)
	}
}

// NewInterruptSignalChannel returns a channel listening for os.Signals the cli will react to.
func NewInterruptSignalChannel() chan os.Signal {
	signalsToListenTo := []os.Signal{
		syscall.SIGINT,                   // Strg + c
		syscall.SIGTERM, syscall.SIGQUIT, // terminate but finish/cleanup first, e.g. kill
		os.Interrupt,
	}

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, signalsToListenTo...)

	return osSignal
}

// loadConfig reads the defaults, the environment and, if given, the config file.
func loadConfig(cmd *cobra.Command) (*codecamp.Config, error) {
	vip := codecamp.DefaultViper()

	path, _ := cmd.Flags().GetString(configFlag)
	if path != "" {
		vip.SetConfigFile(path)

		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", path, err)
		}
	}

	conf := &codecamp.Config{}
	if err := vip.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	return conf, nil
}
