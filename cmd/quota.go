package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show the configured daily AI quota",
	Long:  "Prints the daily AI call budget and enrichment settings. Usage counts live for the duration of one process; the serve API exposes live counts at /api/quota.",
	RunE: func(_ *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "Daily limit:\t%d calls\n", cfg.Quota.DailyLimit)
		_, _ = fmt.Fprintf(w, "Model:\t%s\n", cfg.Anthropic.Model)
		_, _ = fmt.Fprintf(w, "Max retries:\t%d\n", cfg.Enrich.MaxRetries)
		_, _ = fmt.Fprintf(w, "Base backoff:\t%dms\n", cfg.Enrich.BaseBackoffMs)
		_, _ = fmt.Fprintf(w, "Pacing:\t%dms\n", cfg.Enrich.PacingMs)
		_, _ = fmt.Fprintf(w, "Hot threshold:\t%d\n", cfg.Enrich.HotScoreThreshold)
		if cfg.Anthropic.Key == "" {
			_, _ = fmt.Fprintln(w, "AI enrichment:\tdisabled (LEADGEN_ANTHROPIC_KEY not set)")
		} else {
			_, _ = fmt.Fprintln(w, "AI enrichment:\tenabled")
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(quotaCmd)
}
