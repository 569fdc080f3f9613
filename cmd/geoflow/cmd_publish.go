package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"

	orchestrators "github.com/reallocate-eu/geoflow/internal/domain-orchestrators"
)

func runPublish(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	var (
		dataDir    = fs.String("data-dir", "data", "Directory containing pilot GeoJSON files")
		configPath = fs.String("config", "", "Optional YAML configuration file")
		dryRun     = fs.Bool("dry-run", false, "Plan only, make no catalog changes")
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

	mode := orchestrators.ModePublish
	if *dryRun {
		mode = orchestrators.ModePlan
	}

	workflow, err := buildPipeline(cfg, loadCredentials(), mode, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	summary, err := workflow.Run(ctx, *dataDir, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeValidationReport(cfg.Output.ValidationReport, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write validation report: %v\n", err)
		os.Exit(1)
	}
	if err := writePublishReport(cfg.Output.PublishReport, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write publish report: %v\n", err)
		os.Exit(1)
	}
	if err := writeSummaryJSON(cfg.Output.SummaryJSON, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write summary: %v\n", err)
		os.Exit(1)
	}

	printRunSummary(summary)
	if !summary.Success() {
		os.Exit(1)
	}
}
