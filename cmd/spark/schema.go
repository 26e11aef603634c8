package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidencelabs/spark/internal/schema"
)

var schemaStrict bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create and inspect extraction schemas",
}

var schemaInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a starter extraction schema",
	Long: `Write a starter extraction schema to edit.

The context is a short labeled passage; each entity lists example
extractions taken verbatim from that context.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := schema.New(
			"Patients with type 2 diabetes were randomized to metformin or placebo.",
			[]schema.Entity{
				{
					Name:        "Disease",
					Description: "A disease or medical condition under study",
					Examples:    []string{"type 2 diabetes"},
				},
				{
					Name:        "Intervention",
					Description: "A drug, therapy, or procedure being evaluated",
					Examples:    []string{"metformin", "placebo"},
				},
			},
		)
		if err := s.Save(args[0]); err != nil {
			return err
		}
		fmt.Printf("Starter schema written to %s\n", args[0])
		return nil
	},
}

var schemaValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check an extraction schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schema.Load(args[0])
		if err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("schema validation failed: %w", err)
		}
		if schemaStrict {
			if err := s.ValidateStrict(); err != nil {
				return fmt.Errorf("schema validation failed: %w", err)
			}
		}
		fmt.Printf("%s is valid (%d entities)\n", args[0], len(s.Entities))
		return nil
	},
}

var schemaDescribeCmd = &cobra.Command{
	Use:   "describe <path>",
	Short: "Show a schema's entities and derived instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schema.Load(args[0])
		if err != nil {
			return err
		}
		s.Refresh()

		fmt.Printf("Schema: %s\n", args[0])
		fmt.Printf("Context: %d characters\n", len(s.Context))
		fmt.Printf("Entities (%d):\n", len(s.Entities))
		for _, e := range s.Entities {
			fmt.Printf("  %s: %d example(s)", e.Name, len(e.Examples))
			if e.Description != "" {
				fmt.Printf(" -- %s", e.Description)
			}
			fmt.Println()
		}
		fmt.Printf("\nDerived instructions:\n%s\n", s.PromptDescription)
		return nil
	},
}

func init() {
	schemaValidateCmd.Flags().BoolVar(&schemaStrict, "strict", false, "require every example to appear in its context")

	schemaCmd.AddCommand(schemaInitCmd, schemaValidateCmd, schemaDescribeCmd)
	rootCmd.AddCommand(schemaCmd)
}
