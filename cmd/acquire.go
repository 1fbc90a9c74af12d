package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Run one lead acquisition pass",
	Long:  "Fans out to the configured directory sources, deduplicates the merged results, scores new leads, and persists them.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		query, _ := cmd.Flags().GetString("query")
		location, _ := cmd.Flags().GetString("location")
		limit, _ := cmd.Flags().GetInt("limit")
		sourceNames, _ := cmd.Flags().GetStringSlice("sources")

		tags := make([]model.SourceTag, 0, len(sourceNames))
		for _, s := range sourceNames {
			tag, err := model.ParseSourceTag(s)
			if err != nil {
				return err
			}
			tags = append(tags, tag)
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		summary, err := env.Pipeline.Acquire(ctx, pipeline.AcquireRequest{
			Query:    query,
			Location: location,
			Limit:    limit,
			Sources:  tags,
		})
		if err != nil {
			return err
		}

		formatSummary(os.Stdout, summary)
		return nil
	},
}

func init() {
	acquireCmd.Flags().String("query", "", "what to search for, e.g. \"plumber\"")
	acquireCmd.Flags().String("location", "", "city or region hint")
	acquireCmd.Flags().Int("limit", 20, "total candidate budget across all sources")
	acquireCmd.Flags().StringSlice("sources", nil, "restrict to specific sources (maps, local, b2b, reviews)")
	_ = acquireCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(acquireCmd)
}

// formatSummary writes a tabular acquisition summary to w.
func formatSummary(out io.Writer, s *pipeline.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tCOUNT\tERROR")
	_, _ = fmt.Fprintln(w, "------\t-----\t-----")
	for _, tag := range model.AllSourceTags() {
		report, ok := s.PerSource[tag]
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", tag, report.Count, report.Err)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Scraped:\t%d\n", s.TotalScraped)
	_, _ = fmt.Fprintf(w, "Unique:\t%d\n", s.Unique)
	_, _ = fmt.Fprintf(w, "Duplicates:\t%d\n", s.Duplicates)
	_, _ = fmt.Fprintf(w, "Saved:\t%d\n", s.Saved)
	_, _ = fmt.Fprintf(w, "Hot leads:\t%d\n", s.Hot)
	_ = w.Flush()
}
