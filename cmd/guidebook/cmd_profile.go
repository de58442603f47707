package main

import (
	"github.com/spf13/cobra"
	"github.com/viant/guidebook/service/dao/profile/fs"
	"gopkg.in/yaml.v3"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect stored profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the selected profile",
	Args:  cobra.NoArgs,
	RunE:  showProfile,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	Args:  cobra.NoArgs,
	RunE:  listProfiles,
}

func init() {
	profileCmd.AddCommand(profileShowCmd, profileListCmd)
}

func showProfile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	profiles, err := fs.New(ctx, config.Profile.URL)
	if err != nil {
		return err
	}
	profile, err := profiles.Load(ctx, config.Profile.Name)
	if err != nil {
		return err
	}
	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	defer encoder.Close()
	return encoder.Encode(profile)
}

func listProfiles(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	profiles, err := fs.New(ctx, config.Profile.URL)
	if err != nil {
		return err
	}
	all, err := profiles.List(ctx)
	if err != nil {
		return err
	}
	for _, profile := range all {
		cmd.Println(profile.Name)
	}
	return nil
}
