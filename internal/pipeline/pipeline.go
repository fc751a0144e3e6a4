// Package pipeline wires partitioning, cleaning, chunking and schema mapping
// into one processing run per document.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/feichai0017/ai-ready-data/internal/extract"
	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/internal/partition"
	"github.com/feichai0017/ai-ready-data/internal/pipeline/chunk"
	"github.com/feichai0017/ai-ready-data/internal/pipeline/clean"
	"github.com/feichai0017/ai-ready-data/internal/pipeline/schemamap"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
	"github.com/feichai0017/ai-ready-data/pkg/metrics"
)

// Pipeline runs the partition → clean → chunk → schema-map sequence. It is
// stateless: concurrent runs share nothing mutable.
type Pipeline struct {
	registry  *partition.Registry
	extractor *extract.Extractor
	logger    logger.Logger
}

// New builds a pipeline. extractor may be nil; requests asking for semantic
// extraction then fail with a configuration error.
func New(registry *partition.Registry, extractor *extract.Extractor, log logger.Logger) *Pipeline {
	return &Pipeline{
		registry:  registry,
		extractor: extractor,
		logger:    log,
	}
}

// Supported lists the file extensions a pipeline run can accept.
func (p *Pipeline) Supported() []string {
	return p.registry.Supported()
}

// Process converts raw file bytes into the structured output envelope.
// Either the full envelope is produced or an error is returned; a failed run
// leaves no partial result behind.
func (p *Pipeline) Process(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions, fields []models.SchemaField) (*models.StructuredOutput, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := models.ValidateSchemaFields(fields); err != nil {
		return nil, err
	}

	elements, err := p.partition(ctx, content, filename, opts)
	if err != nil {
		return nil, err
	}

	if err := runStage("cleaning", func() {
		elements = clean.Apply(elements, clean.OptionsFrom(opts))
	}); err != nil {
		return nil, err
	}

	if err := runStage("chunking", func() {
		elements = chunk.Apply(elements, opts)
	}); err != nil {
		return nil, err
	}

	var out *models.StructuredOutput
	if err := runStage("schema_mapping", func() {
		out = schemamap.Apply(elements, fields, filename, opts)
	}); err != nil {
		return nil, err
	}

	if opts.SemanticExtraction {
		if !p.extractor.Enabled() {
			return nil, fmt.Errorf("%w: semantic extraction requested but no extraction endpoint is configured", models.ErrConfiguration)
		}
		start := time.Now()
		structured, err := p.extractor.Extract(ctx, combinedText(elements), filepath.Base(filename))
		metrics.ObserveStage("semantic_extraction", start)
		if err != nil {
			return nil, models.NewStageError("semantic_extraction", err)
		}
		out.StructuredData = structured
	}

	p.logger.Info("Pipeline run completed",
		logger.String("filename", filename),
		logger.Int("elements", out.Metadata.TotalElements),
	)
	return out, nil
}

// partition resolves the partitioner chain for the file and walks it primary
// first, falling back down the chain until one succeeds.
func (p *Pipeline) partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	chain, err := p.registry.Chain(filename, opts.Strategy)
	if err != nil {
		return nil, err
	}

	defer metrics.ObserveStage("partition", time.Now())

	var lastErr error
	for i, partitioner := range chain {
		elements, err := partitioner.Partition(ctx, content, filename, opts)
		if err == nil {
			stampFilename(elements, filename)
			return elements, nil
		}
		lastErr = err
		if i < len(chain)-1 {
			p.logger.Warn("Partitioner failed, trying fallback",
				logger.String("filename", filename),
				logger.Int("attempt", i+1),
				logger.Error(err),
			)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %s: %v", models.ErrPartitionFailure, filepath.Base(filename), lastErr)
}

// runStage executes one in-memory stage, converting an unexpected panic into
// a StageError so a single bad document cannot take the process down.
func runStage(name string, fn func()) (err error) {
	defer metrics.ObserveStage(name, time.Now())
	defer func() {
		if r := recover(); r != nil {
			err = models.NewStageError(name, fmt.Errorf("%v", r))
		}
	}()
	fn()
	return nil
}

// combinedText joins element texts for the extraction prompt.
func combinedText(elements []models.Element) string {
	var parts []string
	for _, e := range elements {
		if strings.TrimSpace(e.Text) != "" {
			parts = append(parts, e.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// stampFilename overwrites every element's filename with the base name so
// the field is uniform regardless of what the partitioner stored.
func stampFilename(elements []models.Element, filename string) {
	base := filepath.Base(filename)
	for i := range elements {
		elements[i].Metadata.Filename = base
	}
}
