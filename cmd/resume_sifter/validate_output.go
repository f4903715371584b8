package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-sifter/internal/schemas"
	schemafiles "github.com/jonathan/resume-sifter/schemas"
)

var validateOutputCmd = &cobra.Command{
	Use:   "validate-output",
	Short: "Check a run result or input document against its JSON Schema",
	Args:  cobra.NoArgs,
	RunE:  runValidateOutput,
}

var (
	validateInput    string
	validateDocument bool
)

func init() {
	validateOutputCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to the JSON file (required)")
	validateOutputCmd.Flags().BoolVar(&validateDocument, "document", false, "Validate an input document instead of a run result")

	if err := validateOutputCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	rootCmd.AddCommand(validateOutputCmd)
}

func runValidateOutput(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(validateInput)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", validateInput, err)
	}

	name := schemafiles.RunResult
	if validateDocument {
		name = schemafiles.Document
	}
	if err := schemas.ValidateEmbedded(name, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid against %s\n", validateInput, name)
	return nil
}
