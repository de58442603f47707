package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/guidebook"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Store an answer in the profile",
}

var oneofCmd = &cobra.Command{
	Use:   "oneof [key] [option...]",
	Short: "Pick exactly one option",
	Args:  cobra.MinimumNArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return runSelect(cmd, args, false) },
}

var severalofCmd = &cobra.Command{
	Use:   "severalof [key] [option...]",
	Short: "Pick any number of options",
	Args:  cobra.MinimumNArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return runSelect(cmd, args, true) },
}

func init() {
	selectCmd.AddCommand(oneofCmd, severalofCmd)
}

func runSelect(cmd *cobra.Command, args []string, multi bool) error {
	ctx := cmd.Context()
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	srv, err := guidebook.New(ctx, guidebook.WithConfig(config))
	if err != nil {
		return err
	}
	selected, err := srv.Select(ctx, args[0], args[1:], multi)
	if err != nil {
		return err
	}
	for _, item := range selected {
		fmt.Fprintln(cmd.OutOrStdout(), item)
	}
	return nil
}
