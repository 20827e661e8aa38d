package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/imgo/imgur"
)

// limitsCmd represents the limits command
var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show remaining user and application credits",
	Long: `Show the remaining user and application credits reported by the
credits endpoint.

The table is still printed when a quota is exhausted; the command then exits
with the rate limit error.`,
	PreRunE: initializeApp,
	RunE:    runLimits,
}

func init() {
	rootCmd.AddCommand(limitsCmd)
}

func runLimits(cmd *cobra.Command, args []string) error {
	rl, err := client.RateLimit(context.Background())
	if err != nil && !imgur.IsRateLimited(err) {
		return fmt.Errorf("failed to fetch credits: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, strings.Repeat("━", 48))
	fmt.Fprintf(out, "%-14s %15s %15s\n", "SCOPE", "REMAINING", "LIMIT")
	fmt.Fprintln(out, strings.Repeat("━", 48))
	fmt.Fprintf(out, "%-14s %15s %15s\n", "user", orDash(rl.UserRemaining), orDash(rl.UserLimit))
	fmt.Fprintf(out, "%-14s %15s %15s\n", "application", orDash(rl.ClientRemaining), orDash(rl.ClientLimit))
	fmt.Fprintln(out, strings.Repeat("━", 48))

	if date := rl.ResetDate(); date != "" {
		fmt.Fprintf(out, "Credits reset at: %s\n", date)
	}

	// Exhausted quota still fails the command
	return err
}

func orDash(c imgur.Count) string {
	if !c.Valid {
		return "-"
	}
	return c.String()
}
