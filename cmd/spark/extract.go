package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evidencelabs/spark/internal/config"
	"github.com/evidencelabs/spark/internal/export"
	"github.com/evidencelabs/spark/internal/extract"
	"github.com/evidencelabs/spark/internal/home"
	"github.com/evidencelabs/spark/internal/ingest"
	"github.com/evidencelabs/spark/internal/providers"
	"github.com/evidencelabs/spark/internal/run"
	"github.com/evidencelabs/spark/internal/schema"
	"github.com/evidencelabs/spark/internal/svcctx"
)

var (
	extractSchemaPath  string
	extractOutput      string
	extractFormat      string
	extractInputFormat string
	extractVizDir      string
	extractVizZip      string
	extractNoViz       bool
	extractStrict      bool
	extractProvider    string
	extractModel       string
)

var extractCmd = &cobra.Command{
	Use:   "extract <input-file>",
	Short: "Run entity extraction over a RIS or CSV file",
	Long: `Run entity extraction over every record in a bibliographic export.

Each record's title and abstract are sent to the configured LLM provider
along with the extraction schema. Results are written as a table with one
column per entity, plus one HTML highlight document per record.

A failing record never aborts the run: its cells are left blank and the
run finishes with a failure summary.

Examples:
  spark extract refs.ris --schema schema.json
  spark extract refs.csv --schema schema.json --format xlsx -o results.xlsx
  spark extract refs.ris --schema schema.json --viz-zip viz.zip --strict-schema`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := svcctx.WithLogger(cmd.Context(), slog.Default())

		// An explicit --config wins; otherwise fall back to the home
		// directory's config file when one exists.
		configPath := cfgFile
		if configPath == "" {
			if h, err := home.New(homeDir); err == nil && h.ConfigExists() {
				configPath = h.ConfigPath()
			}
		}

		mgr, err := config.NewManager(configPath)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		s, err := schema.Load(extractSchemaPath)
		if err != nil {
			return err
		}
		if extractStrict || cfg.Defaults.StrictSchema {
			if err := s.ValidateStrict(); err != nil {
				return fmt.Errorf("schema validation failed: %w", err)
			}
		}

		ds, err := loadDataset(args[0], extractInputFormat)
		if err != nil {
			return err
		}

		client, err := buildClient(cfg)
		if err != nil {
			return err
		}

		runner := run.New(extract.New(client, extractModel), run.Options{
			SkipViz: extractNoViz,
			Progress: func(processed, total int) {
				fmt.Fprintf(os.Stderr, "\rProcessed %d/%d records", processed, total)
				if processed == total {
					fmt.Fprintln(os.Stderr)
				}
			},
		})

		res, err := runner.Run(ctx, ds, s)
		if err != nil {
			fmt.Fprintln(os.Stderr)
			return err
		}

		if err := writeResults(cfg, ds, s.EntityNames(), res); err != nil {
			return err
		}

		fmt.Printf("Run %s %s: %d records\n", res.RunID, res.Status, len(res.Records))
		fmt.Println("Records with extractions:")
		for _, name := range s.EntityNames() {
			fmt.Printf("  %s: %d\n", name, res.Stats.ByName[name])
		}
		if summary := res.ErrorSummary(); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
		return nil
	},
}

// loadDataset parses the input file, choosing the parser from the format
// override or the file extension.
func loadDataset(path, format string) (*ingest.Dataset, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ris", ".txt":
			format = "ris"
		case ".csv":
			format = "csv"
		default:
			return nil, fmt.Errorf("cannot infer input format from %q; use --input-format", path)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	switch format {
	case "ris":
		return ingest.ParseRIS(f)
	case "csv":
		return ingest.ParseCSV(f)
	default:
		return nil, fmt.Errorf("unknown input format %q (expected ris or csv)", format)
	}
}

// buildClient constructs the LLM client for the selected provider entry.
func buildClient(cfg *config.Config) (providers.Client, error) {
	name := extractProvider
	if name == "" {
		name = cfg.Defaults.Provider
	}
	p, ok := cfg.GetProvider(name)
	if !ok {
		return nil, fmt.Errorf("provider %q not found in config", name)
	}
	if !p.Enabled {
		return nil, fmt.Errorf("provider %q is disabled", name)
	}

	switch p.Type {
	case "openai":
		return providers.NewOpenAIClient(p.ToOpenAIConfig()), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", p.Type)
	}
}

// writeResults writes the result table and the visualization documents.
func writeResults(cfg *config.Config, ds *ingest.Dataset, names []string, res *run.Result) error {
	format := extractFormat
	if format == "" {
		format = cfg.Defaults.OutputFormat
	}
	if format == "" {
		format = "csv"
	}

	output := extractOutput
	if output == "" {
		output = "results." + format
	}

	switch format {
	case "csv":
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		if err := export.WriteCSV(f, ds, names, res.Rows); err != nil {
			return err
		}
	case "xlsx":
		if err := export.WriteXLSX(output, ds, names, res.Rows); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q (expected csv or xlsx)", format)
	}
	fmt.Printf("Results written to %s\n", output)

	if extractNoViz || len(res.Docs) == 0 {
		return nil
	}

	if extractVizZip != "" {
		f, err := os.Create(extractVizZip)
		if err != nil {
			return fmt.Errorf("failed to create visualization archive: %w", err)
		}
		defer f.Close()
		if err := export.WriteVizArchive(f, res.Docs); err != nil {
			return err
		}
		fmt.Printf("Visualizations written to %s\n", extractVizZip)
		return nil
	}

	vizDir := extractVizDir
	if vizDir == "" {
		vizDir = cfg.Defaults.VizDir
	}
	if vizDir == "" {
		vizDir = "viz"
	}
	if err := export.WriteVizDir(vizDir, res.Docs); err != nil {
		return err
	}
	fmt.Printf("Visualizations written to %s/\n", vizDir)
	return nil
}

func init() {
	extractCmd.Flags().StringVarP(&extractSchemaPath, "schema", "s", "", "extraction schema file (required)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "result table path (default: results.<format>)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "", "result table format: csv or xlsx")
	extractCmd.Flags().StringVar(&extractInputFormat, "input-format", "", "input format override: ris or csv")
	extractCmd.Flags().StringVar(&extractVizDir, "viz-dir", "", "directory for HTML highlight documents")
	extractCmd.Flags().StringVar(&extractVizZip, "viz-zip", "", "write highlight documents as a single zip instead")
	extractCmd.Flags().BoolVar(&extractNoViz, "no-viz", false, "skip visualization rendering")
	extractCmd.Flags().BoolVar(&extractStrict, "strict-schema", false, "require every schema example to appear in its context")
	extractCmd.Flags().StringVar(&extractProvider, "provider", "", "provider entry to use (default from config)")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "model override for this run")
	_ = extractCmd.MarkFlagRequired("schema")

	rootCmd.AddCommand(extractCmd)
}
