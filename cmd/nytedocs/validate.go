package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/f4ah6o/nyte-docs-go/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the documentation collection",
	Long: `Checks that every page has a unique id, a label and an href, and warns
about duplicate labels, pages without content and oversized pages.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	_, docs, err := loadCollection()
	if err != nil {
		return err
	}

	report := validator.New(logger).Validate(docs)
	out := cmd.OutOrStdout()

	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	for _, e := range report.Errors {
		fmt.Fprintf(out, "%s %s\n", red("ERROR"), e)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "%s %s\n", yellow("WARN "), w)
	}

	fmt.Fprintf(out, "\n%d documents, %.1f KB of content\n", len(docs), float64(report.TotalBytes)/1024)
	for _, d := range report.Largest {
		fmt.Fprintf(out, "  %-30s %8.1f KB\n", d.ID, float64(d.Bytes)/1024)
	}

	if !report.OK() {
		return fmt.Errorf("validation failed with %d error(s)", len(report.Errors))
	}
	fmt.Fprintln(out, color.GreenString("Validation passed."))
	return nil
}
