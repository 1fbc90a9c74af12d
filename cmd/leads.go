package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and work persisted leads",
	Long:  "Commands for listing, viewing, updating, and exporting leads.",
}

// -- leads list --

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initLeadStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		filter, err := leadFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "leads list")
		}

		if len(leads) == 0 {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}

		formatLeadsList(os.Stdout, leads)
		return nil
	},
}

// -- leads show --

var leadsShowCmd = &cobra.Command{
	Use:   "show <lead-id>",
	Short: "Show full details of a lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initLeadStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		lead, err := st.GetLead(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "leads show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(lead)
	},
}

// -- leads update --

var leadsUpdateCmd = &cobra.Command{
	Use:   "update <lead-id>",
	Short: "Update a lead's status, priority, or notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		update, err := leadUpdateFromFlags(cmd)
		if err != nil {
			return err
		}
		if update.Status == nil && update.Priority == nil && update.Notes == nil {
			return eris.New("nothing to update: pass --status, --priority, or --notes")
		}

		st, err := initLeadStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		lead, err := st.UpdateLead(ctx, args[0], update)
		if err != nil {
			return eris.Wrap(err, "leads update")
		}

		fmt.Printf("Updated %s: status=%s priority=%s\n", lead.ID, lead.Status, lead.Priority)
		return nil
	},
}

// -- leads export --

var leadsExportCmd = &cobra.Command{
	Use:   "export <output.xlsx>",
	Short: "Export leads to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initLeadStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		filter, err := leadFilterFromFlags(cmd)
		if err != nil {
			return err
		}
		filter.Limit = 10000 // high limit for export

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "leads export")
		}

		if err := writeLeadsWorkbook(args[0], leads); err != nil {
			return err
		}

		fmt.Printf("Exported %d leads to %s\n", len(leads), args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{leadsListCmd, leadsExportCmd} {
		c.Flags().String("status", "", "filter by status (new, contacted, interested, qualified, won, lost)")
		c.Flags().String("source", "", "filter by source (maps, local, b2b, reviews)")
		c.Flags().Bool("hot", false, "only hot leads")
	}
	leadsListCmd.Flags().Int("limit", 50, "max number of leads to display")

	leadsUpdateCmd.Flags().String("status", "", "new status")
	leadsUpdateCmd.Flags().String("priority", "", "new priority (low, medium, high, urgent)")
	leadsUpdateCmd.Flags().String("notes", "", "replace notes")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsShowCmd)
	leadsCmd.AddCommand(leadsUpdateCmd)
	leadsCmd.AddCommand(leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}

// leadFilterFromFlags builds a store filter from the shared list/export flags.
func leadFilterFromFlags(cmd *cobra.Command) (store.Filter, error) {
	var filter store.Filter

	if s, _ := cmd.Flags().GetString("status"); s != "" {
		status, err := model.ParseLeadStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if s, _ := cmd.Flags().GetString("source"); s != "" {
		tag, err := model.ParseSourceTag(s)
		if err != nil {
			return filter, err
		}
		filter.Source = tag
	}
	filter.HotOnly, _ = cmd.Flags().GetBool("hot")
	if cmd.Flags().Lookup("limit") != nil {
		filter.Limit, _ = cmd.Flags().GetInt("limit")
	}
	return filter, nil
}

// leadUpdateFromFlags builds a LeadUpdate from the update flags, validating
// enum values up front.
func leadUpdateFromFlags(cmd *cobra.Command) (store.LeadUpdate, error) {
	var update store.LeadUpdate

	if s, _ := cmd.Flags().GetString("status"); s != "" {
		status, err := model.ParseLeadStatus(s)
		if err != nil {
			return update, err
		}
		update.Status = &status
	}
	if s, _ := cmd.Flags().GetString("priority"); s != "" {
		priority, err := model.ParsePriority(s)
		if err != nil {
			return update, err
		}
		update.Priority = &priority
	}
	if cmd.Flags().Changed("notes") {
		notes, _ := cmd.Flags().GetString("notes")
		update.Notes = &notes
	}
	return update, nil
}

var leadExportHeader = []string{
	"ID", "Business", "Contact", "Phone", "Email", "Website", "City",
	"Category", "Rating", "Reviews", "Source", "Status", "Priority", "Hot",
	"AI Score", "Interest", "Conversion %", "Opening Line", "Created",
}

// writeLeadsWorkbook writes leads to a single-sheet XLSX file.
func writeLeadsWorkbook(path string, leads []model.Lead) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range leadExportHeader {
		header.AddCell().Value = h
	}

	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().Value = l.ID
		row.AddCell().Value = l.BusinessName
		row.AddCell().Value = l.ContactName
		row.AddCell().Value = l.Phone
		row.AddCell().Value = l.Email
		row.AddCell().Value = l.Website
		row.AddCell().Value = l.City
		row.AddCell().Value = l.Category
		if l.Rating != nil {
			row.AddCell().SetFloat(*l.Rating)
		} else {
			row.AddCell()
		}
		row.AddCell().SetInt(l.ReviewCount)
		row.AddCell().Value = string(l.Source)
		row.AddCell().Value = string(l.Status)
		row.AddCell().Value = string(l.Priority)
		row.AddCell().SetBool(l.Hot)
		row.AddCell().SetInt(l.AIScore)
		row.AddCell().Value = string(l.AIInterest)
		row.AddCell().SetInt(l.AIConversionProb)
		row.AddCell().Value = l.AIOpeningLine
		row.AddCell().Value = l.CreatedAt.Format(time.RFC3339)
	}

	return eris.Wrapf(file.Save(path), "export: save %s", path)
}

// formatLeadsList writes a tabular list of leads to w.
func formatLeadsList(out io.Writer, leads []model.Lead) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tBUSINESS\tSOURCE\tSCORE\tINTEREST\tSTATUS\tPRIORITY\tHOT\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t--------\t------\t-----\t--------\t------\t--------\t---\t-------")

	for _, l := range leads {
		business := l.BusinessName
		if len(business) > 30 {
			business = business[:27] + "..."
		}

		hot := ""
		if l.Hot {
			hot = "*"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(l.ID),
			business,
			l.Source,
			l.AIScore,
			l.AIInterest,
			l.Status,
			l.Priority,
			hot,
			l.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
