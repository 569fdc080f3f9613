// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces/gateways"
	"github.com/reallocate-eu/geoflow/internal/domain/services"
)

// Mode selects how far a run goes after validation
type Mode string

// Workflow run modes
const (
	ModeValidate Mode = "validate" // discover + validate only
	ModePlan     Mode = "plan"     // validate + compute publish plan, no side effects
	ModePublish  Mode = "publish"  // full run
)

// FileResult is the per-file outcome of one run
type FileResult struct {
	File       entities.SpatialFile
	Report     *entities.ValidationReport
	Plan       *entities.PublishPlan
	Record     *entities.PublishRecord
	PublishErr error
	Err        error // discovery/read-level error, file never validated
}

// RunSummary is the machine-readable outcome of one workflow run.
//
// The counters track independent dimensions rather than partitioning the
// discovered files: Passed/Failed/Errored classify validation outcomes,
// while Published, Skipped and publish-stage errors accumulate on top of
// them. A file that passes validation and then errors during publish
// counts in both Passed and Errored, so the sums can exceed Discovered.
type RunSummary struct {
	RunID      string
	Mode       Mode
	StartedAt  time.Time
	Duration   time.Duration
	Discovered int
	Passed     int
	Failed     int
	Published  int
	Skipped    int
	Errored    int
	Results    []FileResult
}

// Failed run semantics per mode: validate mode fails on validation
// failures, publish mode on publish failures, plan mode never.
func (s *RunSummary) Success() bool {
	switch s.Mode {
	case ModeValidate:
		return s.Failed == 0 && s.Errored == 0
	case ModePublish:
		for _, r := range s.Results {
			if r.PublishErr != nil {
				return false
			}
		}
		return s.Errored == 0
	default: // plan-only runs take no action and always succeed
		return true
	}
}

// WorkflowOrchestrator sequences discovery, validation, planning and
// publishing. Files are processed independently: one file's failure never
// halts the batch.
type WorkflowOrchestrator struct {
	discovery  *services.DiscoveryService
	structural *services.StructuralValidator
	quality    *services.QualityValidator
	boundary   *services.BoundaryResolver
	reports    *services.ReportBuilder
	planner    *services.PublishPlanner
	publisher  *services.ResourcePublisher
	catalog    gateways.CatalogGateway // nil in validate mode and credential-less plan mode
	logger     interfaces.Logger
	cfg        *entities.Config

	slugLocks sync.Map // slug -> *sync.Mutex
}

// NewWorkflowOrchestrator wires the full pipeline. catalog and publisher may
// be nil for validate and plan-only runs; a plan without catalog access
// assumes no dataset exists yet.
func NewWorkflowOrchestrator(
	discovery *services.DiscoveryService,
	structural *services.StructuralValidator,
	quality *services.QualityValidator,
	boundary *services.BoundaryResolver,
	reports *services.ReportBuilder,
	planner *services.PublishPlanner,
	publisher *services.ResourcePublisher,
	catalog gateways.CatalogGateway,
	logger interfaces.Logger,
	cfg *entities.Config,
) *WorkflowOrchestrator {
	return &WorkflowOrchestrator{
		discovery:  discovery,
		structural: structural,
		quality:    quality,
		boundary:   boundary,
		reports:    reports,
		planner:    planner,
		publisher:  publisher,
		catalog:    catalog,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run executes discover -> validate -> {plan|publish} -> summarize
func (o *WorkflowOrchestrator) Run(ctx context.Context, dataDir string, mode Mode) (*RunSummary, error) {
	started := time.Now()
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		Mode:      mode,
		StartedAt: started,
	}

	files, err := o.discovery.DiscoverFiles(dataDir)
	if err != nil {
		return nil, err
	}
	summary.Discovered = len(files)
	summary.Results = make([]FileResult, len(files))

	if len(files) == 0 {
		o.logger.Warn("no pilot files found", interfaces.F("dir", dataDir))
		summary.Duration = time.Since(started)
		return summary, nil
	}

	if mode == ModePublish && o.publisher != nil {
		if err := o.publisher.CheckConnection(ctx); err != nil {
			return nil, err
		}
	}

	concurrency := o.cfg.Publish.Concurrency
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range files {
		i := i
		g.Go(func() error {
			summary.Results[i] = o.processFile(gctx, files[i], mode)
			return nil
		})
	}
	// Worker errors are captured per file; the group only propagates
	// context cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range summary.Results {
		r := &summary.Results[i]
		switch {
		case r.Err != nil:
			summary.Errored++
		case r.Report.Status == entities.ReportPass:
			summary.Passed++
		default:
			summary.Failed++
		}
		if r.Plan != nil && r.Plan.Action == entities.ActionSkip {
			summary.Skipped++
		}
		if r.Record != nil {
			summary.Published++
		}
		if r.PublishErr != nil {
			summary.Errored++
		}
	}

	summary.Duration = time.Since(started)
	o.logger.Info("run complete",
		interfaces.F("run_id", summary.RunID),
		interfaces.F("mode", mode),
		interfaces.F("discovered", summary.Discovered),
		interfaces.F("passed", summary.Passed),
		interfaces.F("failed", summary.Failed),
		interfaces.F("published", summary.Published),
		interfaces.F("skipped", summary.Skipped),
		interfaces.F("errored", summary.Errored))
	return summary, nil
}

// processFile validates one file and, depending on mode, plans and
// publishes it. Validation always completes before the publish begins.
func (o *WorkflowOrchestrator) processFile(ctx context.Context, file entities.SpatialFile, mode Mode) FileResult {
	result := FileResult{File: file}
	started := time.Now()

	raw, err := os.ReadFile(file.Path)
	if err != nil {
		result.Err = fmt.Errorf("cannot read %s: %w", file.Name, err)
		return result
	}

	checks, fc := o.structural.Validate(file, raw)

	// Quality and geographic checks need a well-formed document; a
	// malformed one would fault geometry inspection.
	if services.AllPassed(checks) && fc != nil {
		qualityChecks := o.quality.Validate(file, fc)
		checks = append(checks, qualityChecks...)

		if services.GeometriesValid(qualityChecks) && file.HasIdentity() {
			checks = append(checks, o.boundary.GeographicCheck(ctx, file.CityName, fc))
		}
	}

	result.Report = o.reports.Build(file, checks, started)
	o.logger.Info("file validated",
		interfaces.F("file", file.Name),
		interfaces.F("status", result.Report.Status),
		interfaces.F("checks", fmt.Sprintf("%d/%d", result.Report.PassedChecks, result.Report.TotalChecks)))

	if mode == ModeValidate {
		return result
	}

	if fc == nil {
		result.Plan = &entities.PublishPlan{
			File:   file,
			Slug:   o.planner.Slug(file),
			Action: entities.ActionSkip,
			Reason: "file has no parseable feature collection",
		}
		return result
	}

	result.Plan, result.PublishErr = o.planFile(ctx, result.Report, fc)
	if result.PublishErr != nil || mode == ModePlan {
		return result
	}

	if result.Plan.Action == entities.ActionSkip {
		return result
	}

	// Publish operations for the same slug must serialize: the
	// create-vs-update decision reads catalog state before writing it.
	lock := o.slugLock(result.Plan.Slug)
	lock.Lock()
	defer lock.Unlock()

	result.Record, result.PublishErr = o.publisher.Publish(ctx, result.Plan, result.Report, fc, raw)
	if result.PublishErr != nil {
		o.logger.Error("publish failed",
			interfaces.F("file", file.Name),
			interfaces.F("slug", result.Plan.Slug),
			interfaces.F("err", result.PublishErr))
	}
	return result
}

func (o *WorkflowOrchestrator) planFile(ctx context.Context, report *entities.ValidationReport, fc *geojson.FeatureCollection) (*entities.PublishPlan, error) {
	var existing *gateways.Dataset
	if o.catalog != nil && o.planner.WillPublish(report) {
		slug := o.planner.Slug(report.File)
		ds, err := o.catalog.GetDataset(ctx, slug)
		switch {
		case err == nil:
			existing = ds
		case errors.Is(err, gateways.ErrDatasetNotFound):
			// first publish for this slug
		default:
			return nil, fmt.Errorf("failed to read catalog state for %s: %w", slug, err)
		}
	}
	return o.planner.Plan(report, fc, existing)
}

func (o *WorkflowOrchestrator) slugLock(slug string) *sync.Mutex {
	v, _ := o.slugLocks.LoadOrStore(slug, &sync.Mutex{})
	return v.(*sync.Mutex)
}
