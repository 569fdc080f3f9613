package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"

	orchestrators "github.com/reallocate-eu/geoflow/internal/domain-orchestrators"
)

func runValidate(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var (
		dataDir    = fs.String("data-dir", "data", "Directory containing pilot GeoJSON files")
		configPath = fs.String("config", "", "Optional YAML configuration file")
		reportPath = fs.String("report", "", "Validation report path (default from config)")
		jsonPath   = fs.String("json-output", "", "Optional JSON summary path (default from config)")
		verbose    = fs.Bool("verbose", false, "Enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	logger := &interfaces.ConsoleLogger{Verbose: *verbose}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	workflow, err := buildPipeline(cfg, loadCredentials(), orchestrators.ModeValidate, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	summary, err := workflow.Run(ctx, *dataDir, orchestrators.ModeValidate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *reportPath == "" {
		*reportPath = cfg.Output.ValidationReport
	}
	if err := writeValidationReport(*reportPath, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write report: %v\n", err)
		os.Exit(1)
	}
	if *jsonPath == "" {
		*jsonPath = cfg.Output.SummaryJSON
	}
	if err := writeSummaryJSON(*jsonPath, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write summary: %v\n", err)
		os.Exit(1)
	}

	printRunSummary(summary)
	if !summary.Success() {
		os.Exit(1)
	}
}
