package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/viant/guidebook"
	"github.com/viant/guidebook/model/types"
	"github.com/viant/guidebook/service/guide"
	"github.com/viant/guidebook/service/optimizer"
	"github.com/viant/guidebook/tracing"
)

var (
	configURL   string
	profileName string
	noProfile   bool
	quiet       bool
	verbose     bool
	vetoes      []string
	vetoPattern string
	noOptimize  bool
	acceptPrior bool
	assertions  []string
	runName     string
	policyMode  string
)

var rootCmd = &cobra.Command{
	Use:   "guidebook",
	Short: "Run guided installation and configuration procedures",
	Long: `guidebook turns a guidebook, a YAML document describing a procedure,
into a task graph and walks it: work that validation proves already done is
skipped, questions are asked (guide) or answered from your profile (run).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var guideCmd = &cobra.Command{
	Use:   "guide [guidebook]",
	Short: "Walk a guidebook, asking every question",
	Args:  cobra.ExactArgs(1),
	RunE:  guideRunner(guide.ModeGuide),
}

var runCmd = &cobra.Command{
	Use:   "run [guidebook]",
	Short: "Walk a guidebook, answering questions from the profile",
	Args:  cobra.ExactArgs(1),
	RunE:  guideRunner(guide.ModeRun),
}

var whichCmd = &cobra.Command{
	Use:   "which [guidebook]",
	Short: "Replay a guidebook from the profile and print the variables it exports",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhich,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configURL, "config", "", "configuration file URL")
	flags.StringVarP(&profileName, "profile", "p", "", "profile to read and store answers")
	flags.BoolVar(&noProfile, "no-profile", false, "keep answers in memory only")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only report warnings and errors")
	flags.BoolVarP(&verbose, "verbose", "V", false, "debug logging")

	for _, cmd := range []*cobra.Command{guideCmd, runCmd, whichCmd} {
		cmd.Flags().StringSliceVar(&vetoes, "veto", nil, "imports that are never pruned")
		cmd.Flags().StringVar(&vetoPattern, "veto-pattern", "", "regular expression matching imports that are never pruned")
		cmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "do not prune validated work")
		cmd.Flags().StringArrayVarP(&assertions, "assert", "a", nil, "pre-answer a question, key=value")
		cmd.Flags().StringVar(&runName, "name", "", "name of the run, shown in exit messages")
		cmd.Flags().StringVar(&policyMode, "policy", "", "code block policy: auto, ask or deny")
	}
	guideCmd.Flags().BoolVarP(&acceptPrior, "yes", "y", false, "accept prior answers without asking")

	rootCmd.AddCommand(guideCmd, runCmd, whichCmd, selectCmd, profileCmd)
}

// loadConfig reads --config, if any, and applies the flag overrides.
func loadConfig(ctx context.Context) (*guidebook.Config, error) {
	config := guidebook.DefaultConfig()
	if configURL != "" {
		var err error
		if config, err = guidebook.LoadConfig(ctx, configURL); err != nil {
			return nil, err
		}
	}
	if profileName != "" {
		config.Profile.Name = profileName
	}
	if noProfile {
		config.Profile.Disabled = true
	}
	if quiet {
		config.Log.Quiet = true
	}
	if verbose {
		config.Log.Verbose = true
	}
	if noOptimize {
		config.Optimize = optimizer.Optimization{Off: true}
	}
	return config, config.Validate()
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return types.ExitOK
	}
	if errors.Is(err, types.ErrCanceled) {
		return types.ExitInterrupted
	}
	if code, ok := types.IsEarlyExit(err); ok {
		return code
	}
	return 1
}

func main() {
	err := rootCmd.Execute()
	if sErr := tracing.Shutdown(context.Background()); sErr != nil {
		fmt.Fprintln(os.Stderr, "failed to flush traces:", sErr)
	}
	code := exitCode(err)
	if code == 1 {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(code)
}
