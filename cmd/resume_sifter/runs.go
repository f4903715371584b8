package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-sifter/internal/db"
	"github.com/jonathan/resume-sifter/internal/observability"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect runs stored in PostgreSQL",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the stored report of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var (
	runsDatabaseURL string
	runsDocumentID  string
	runsWithAlerts  bool
	runsLimit       int
)

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDatabaseURL, "database-url", "", "PostgreSQL URL (defaults to DATABASE_URL)")
	runsListCmd.Flags().StringVar(&runsDocumentID, "document", "", "Only runs of this document ID")
	runsListCmd.Flags().BoolVar(&runsWithAlerts, "alerts", false, "Only runs that raised alerts")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs")

	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func openDB(ctx context.Context) (*db.DB, error) {
	url := runsDatabaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("no database: set --database-url or DATABASE_URL")
	}
	return db.Connect(ctx, url)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(ctx, db.RunFilters{
		DocumentID: runsDocumentID,
		WithAlerts: runsWithAlerts,
		Limit:      runsLimit,
	})
	if err != nil {
		return err
	}

	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"ID", "Document", "Status", "Candidates", "Accepted", "Alerts", "Created"})
	for _, r := range runs {
		w.AppendRow(table.Row{r.ID, r.DocumentID, r.Status, r.Candidates, r.Accepted, r.AlertCount, r.CreatedAt.Format("2006-01-02 15:04")})
	}
	fmt.Fprintln(cmd.OutOrStdout(), w.Render())
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[0], err)
	}
	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	report, err := database.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if report == nil {
		return &db.NotFoundError{Kind: "report", ID: id.String()}
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintReport(*report)
	return nil
}
