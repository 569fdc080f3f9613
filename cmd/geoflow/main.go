// Package main provides the geoflow CLI for validating and publishing
// pilot-area geospatial files.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "validate":
		runValidate(ctx, os.Args[2:])
	case "plan":
		runPlan(ctx, os.Args[2:])
	case "publish":
		runPublish(ctx, os.Args[2:])
	case "list":
		runList(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`geoflow - Pilot-area GeoJSON validation and catalog publishing

Usage:
  geoflow <command> [options]

Commands:
  validate  Validate pilot files without touching the catalog
  plan      Validate and show what a publish run would do
  publish   Validate and publish passing files to the data catalog
  list      List discovered pilot files

Use "geoflow <command> --help" for more information about a command.`)
}
