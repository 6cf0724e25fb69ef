package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/autocrew"
	"github.com/hupe1980/autocrew/config"
	"github.com/hupe1980/autocrew/console"
)

var (
	flagConfig   string
	flagModel    string
	flagProvider string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "autocrew",
	Short: "Chat with an AI assistant that can assemble agent teams",
	Long: `AutoCrew is a terminal assistant backed by a multi-agent runtime.

With no arguments it starts an interactive REPL. Plain input chats with the
default agent, which can run shell commands, read and write files, fetch web
pages and PDFs, and spawn focused sub-agents. The /team command hands a task
to a self-organizing team: a planner designs a roster of specialized agents
that coordinate over a shared message board until the orchestrator declares
the task done.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		crew, err := newCrew()
		if err != nil {
			return err
		}
		defer crew.Close()
		return runREPL(crew)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.autocrew/config.json)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Model identifier override")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "Model provider: openai or anthropic")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show model reasoning and debug logs")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(skillsCmd)
}

// newCrew resolves configuration, applies flag overrides and assembles the
// runtime with a console observer.
func newCrew() (*autocrew.AutoCrew, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagVerbose {
		cfg.LogLevel = "debug"
	}

	return autocrew.New(func(o *autocrew.Options) {
		o.Config = &cfg
		o.Observer = console.NewObserver(func(oo *console.Options) {
			oo.Verbose = flagVerbose
		})
	})
}
