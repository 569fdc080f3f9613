package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"
	"github.com/reallocate-eu/geoflow/internal/domain/services"
)

func runList(_ context.Context, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dataDir := fs.String("data-dir", "data", "Directory containing pilot GeoJSON files")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	discovery := services.NewDiscoveryService(&interfaces.NoOpLogger{})
	files, err := discovery.DiscoverFiles(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(files) == 0 {
		fmt.Printf("No .geojson files found in %s\n", *dataDir)
		return
	}

	fmt.Printf("Found %d file(s) in %s:\n\n", len(files), *dataDir)
	for _, file := range files {
		identity := "unrecognized name, will fail validation"
		if file.HasIdentity() {
			identity = fmt.Sprintf("pilot %s, %s", file.PilotID, file.CityName)
		}
		fmt.Printf("  %-40s %8d bytes  %s\n", file.Name, file.SizeBytes, identity)
	}
}
