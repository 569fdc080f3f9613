package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"

	orchestrators "github.com/reallocate-eu/geoflow/internal/domain-orchestrators"
)

func runPlan(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	var (
		dataDir    = fs.String("data-dir", "data", "Directory containing pilot GeoJSON files")
		configPath = fs.String("config", "", "Optional YAML configuration file")
		reportPath = fs.String("report", "", "Publish plan report path (default from config)")
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

	creds := loadCredentials()
	if !creds.complete() {
		logger.Warn("no catalog credentials, planning against an empty catalog")
	}

	workflow, err := buildPipeline(cfg, creds, orchestrators.ModePlan, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	summary, err := workflow.Run(ctx, *dataDir, orchestrators.ModePlan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *reportPath == "" {
		*reportPath = cfg.Output.PublishReport
	}
	if err := writePublishReport(*reportPath, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write report: %v\n", err)
		os.Exit(1)
	}

	printRunSummary(summary)
}
