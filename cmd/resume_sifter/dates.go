package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-sifter/internal/observability"
	"github.com/jonathan/resume-sifter/internal/types"
)

var datesCmd = &cobra.Command{
	Use:   "dates <text>...",
	Short: "Parse date expressions the way the pipeline does",
	Example: `  resume_sifter dates "Janvier 2021 - Présent" "2018 – 2020" "3 ans"
  resume_sifter dates --json "depuis mars 2022"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDates,
}

var datesJSON bool

// datesOutput is the JSON form of one parsed input.
type datesOutput struct {
	Input    string             `json:"input"`
	Inverted bool               `json:"inverted,omitempty"`
	Dates    []types.ParsedDate `json:"dates"`
}

func init() {
	datesCmd.Flags().BoolVar(&datesJSON, "json", false, "Print parsed dates as JSON")
	rootCmd.AddCommand(datesCmd)
}

func runDates(cmd *cobra.Command, args []string) error {
	engine, _, err := newEngine(nil)
	if err != nil {
		return err
	}
	parser := engine.Dates()

	out := make([]datesOutput, 0, len(args))
	for _, text := range args {
		parsed := parser.Parse(text).Collect()
		if parsed == nil {
			parsed = []types.ParsedDate{}
		}
		out = append(out, datesOutput{Input: text, Inverted: parser.Inverted(text), Dates: parsed})
	}

	if datesJSON {
		return writeJSON(cmd.OutOrStdout(), "", out)
	}
	printer := observability.NewPrinter(cmd.OutOrStdout())
	for _, o := range out {
		printer.PrintDates(o.Input, o.Dates)
	}
	return nil
}
