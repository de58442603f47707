package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/viant/guidebook"
	"github.com/viant/guidebook/policy"
	"github.com/viant/guidebook/service/guide"
	"github.com/viant/guidebook/service/optimizer"
)

// guideRunner returns the RunE of a command walking a guidebook in mode.
func guideRunner(mode guide.Mode) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return runGuide(cmd, args, mode)
	}
}

func runGuide(cmd *cobra.Command, args []string, mode guide.Mode) error {
	ctx := cmd.Context()
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	srv, err := newGuideService(cmd, config)
	if err != nil {
		return err
	}
	result, err := srv.Guide(ctx, args[0], mode)
	if err != nil {
		return err
	}
	if config.Log.Verbose {
		encoder := json.NewEncoder(os.Stderr)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return nil
}

// runWhich replays a guidebook from the profile, sending code block output
// to stderr, and prints the variables it exported.
func runWhich(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	srv, err := newGuideService(cmd, config, guidebook.WithWriter(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	result, err := srv.Guide(ctx, args[0], guide.ModeRun)
	if err != nil {
		return err
	}
	return printEnv(cmd.OutOrStdout(), result.Env)
}

func printEnv(w io.Writer, env map[string]string) error {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, env[k]); err != nil {
			return err
		}
	}
	return nil
}

func newGuideService(cmd *cobra.Command, config *guidebook.Config, extra ...guidebook.Option) (*guidebook.Service, error) {
	asserted, err := guidebook.ParseAssertions(assertions)
	if err != nil {
		return nil, err
	}
	options := []guidebook.Option{
		guidebook.WithConfig(config),
		guidebook.WithAssertions(asserted),
		guidebook.WithAcceptPrior(acceptPrior),
		guidebook.WithRunName(runName),
		guidebook.WithSignalTrap(true),
	}
	switch {
	case vetoPattern != "":
		veto, err := optimizer.NewVetoPattern(vetoPattern)
		if err != nil {
			return nil, err
		}
		options = append(options, guidebook.WithVeto(veto))
	case len(vetoes) > 0:
		options = append(options, guidebook.WithVeto(optimizer.NewVetoSet(vetoes...)))
	}
	if policyMode != "" {
		options = append(options, guidebook.WithPolicy(&policy.Policy{Mode: policyMode}))
	}
	return guidebook.New(cmd.Context(), append(options, extra...)...)
}
