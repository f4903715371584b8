package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-sifter/internal/observability"
	"github.com/jonathan/resume-sifter/internal/routing"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Show where the router sends each candidate of a résumé",
	Args:  cobra.NoArgs,
	RunE:  runRoute,
}

var (
	routeInput string
	routeJSON  bool
)

// routeOutput is the JSON form of one routed candidate.
type routeOutput struct {
	LineIndex int    `json:"line_index"`
	Title     string `json:"title"`
	Section   string `json:"section"`
	routing.Decision
}

func init() {
	routeCmd.Flags().StringVarP(&routeInput, "in", "i", "", "Path to the résumé file (required)")
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "Print decisions as JSON")

	if err := routeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, _ []string) error {
	engine, lex, err := newEngine(nil)
	if err != nil {
		return err
	}
	doc, _, err := loadDocument(engine, lex, routeInput)
	if err != nil {
		return err
	}

	router := engine.Router()
	rows := make([]observability.RouteRow, 0, len(doc.Candidates))
	out := make([]routeOutput, 0, len(doc.Candidates))
	for _, c := range doc.Candidates {
		d := router.RouteCandidate(c)
		rows = append(rows, observability.RouteRow{
			LineIndex:  c.LineIndex,
			Title:      c.Title,
			From:       c.Section,
			To:         d.Target,
			Confidence: d.Confidence,
			Reason:     d.Reason,
		})
		out = append(out, routeOutput{LineIndex: c.LineIndex, Title: c.Title, Section: c.Section.String(), Decision: d})
	}

	if routeJSON {
		return writeJSON(cmd.OutOrStdout(), "", out)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRoutes(rows)
	return nil
}
