package cmd

import (
	"context"
	"fmt"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const repoSlug = "s0up4200/imgo"

var checkOnly bool

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update imgo to the latest release",
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only check whether a newer release exists")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if version == "dev" {
		return fmt.Errorf("cannot update a development build")
	}

	current, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("invalid current version %q: %w", version, err)
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", repoSlug)
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Printf("✓ imgo %s is up to date\n", current)
		return nil
	}

	if checkOnly {
		fmt.Printf("A new release is available: %s (current %s)\n", latest.Version(), current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("✓ Updated imgo %s → %s\n", current, latest.Version())
	return nil
}
