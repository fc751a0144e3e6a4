package models

import "fmt"

// PartitionStrategy selects how the partitioning layer extracts elements.
type PartitionStrategy string

const (
	StrategyAuto    PartitionStrategy = "auto"
	StrategyHiRes   PartitionStrategy = "hi_res"
	StrategyFast    PartitionStrategy = "fast"
	StrategyOCROnly PartitionStrategy = "ocr_only"
)

// ChunkingStrategy selects how cleaned elements are grouped into chunks.
type ChunkingStrategy string

const (
	ChunkNone    ChunkingStrategy = "none"
	ChunkByTitle ChunkingStrategy = "by_title"
	ChunkBasic   ChunkingStrategy = "basic"
)

// ProcessingOptions is the immutable per-request pipeline configuration.
type ProcessingOptions struct {
	Strategy PartitionStrategy `json:"strategy" form:"strategy"`

	CleanWhitespace bool `json:"clean_whitespace" form:"clean_whitespace"`
	CleanNonASCII   bool `json:"clean_non_ascii" form:"clean_non_ascii"`
	CleanBullets    bool `json:"clean_bullets" form:"clean_bullets"`
	MinTextLength   int  `json:"min_text_length" form:"min_text_length"`

	ChunkingStrategy  ChunkingStrategy `json:"chunking_strategy" form:"chunking_strategy"`
	MaxChunkSize      int              `json:"max_chunk_size" form:"max_chunk_size"`
	NewAfterChars     int              `json:"new_after_chars" form:"new_after_chars"`
	CombineUnderChars int              `json:"combine_under_chars" form:"combine_under_chars"`

	// SemanticExtraction additionally runs the document text through the
	// configured LLM endpoint and attaches the returned structure to the
	// envelope.
	SemanticExtraction bool `json:"semantic_extraction" form:"semantic_extraction"`

	IncludePageBreaks bool `json:"include_page_breaks" form:"include_page_breaks"`
}

// DefaultProcessingOptions mirrors the defaults offered by the interactive
// tool: fast partitioning, whitespace cleaning, title-based chunking.
func DefaultProcessingOptions() ProcessingOptions {
	return ProcessingOptions{
		Strategy:          StrategyAuto,
		CleanWhitespace:   true,
		ChunkingStrategy:  ChunkByTitle,
		MaxChunkSize:      1000,
		NewAfterChars:     800,
		CombineUnderChars: 200,
		IncludePageBreaks: true,
	}
}

// Validate rejects malformed options before any element is touched.
// Violations are a caller error and are never silently clamped.
func (o *ProcessingOptions) Validate() error {
	switch o.Strategy {
	case StrategyAuto, StrategyHiRes, StrategyFast, StrategyOCROnly, "":
	default:
		return fmt.Errorf("%w: unknown partition strategy %q", ErrConfiguration, o.Strategy)
	}

	if o.MinTextLength < 0 {
		return fmt.Errorf("%w: min_text_length must be non-negative, got %d", ErrConfiguration, o.MinTextLength)
	}

	switch o.ChunkingStrategy {
	case ChunkNone, "":
		return nil
	case ChunkByTitle, ChunkBasic:
	default:
		return fmt.Errorf("%w: unknown chunking strategy %q", ErrConfiguration, o.ChunkingStrategy)
	}

	if o.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max_chunk_size must be positive, got %d", ErrConfiguration, o.MaxChunkSize)
	}
	if o.NewAfterChars <= 0 {
		return fmt.Errorf("%w: new_after_chars must be positive, got %d", ErrConfiguration, o.NewAfterChars)
	}
	if o.CombineUnderChars < 0 {
		return fmt.Errorf("%w: combine_under_chars must not be negative, got %d", ErrConfiguration, o.CombineUnderChars)
	}

	if o.ChunkingStrategy == ChunkByTitle {
		if o.CombineUnderChars > o.NewAfterChars {
			return fmt.Errorf("%w: combine_under_chars (%d) exceeds new_after_chars (%d)",
				ErrConfiguration, o.CombineUnderChars, o.NewAfterChars)
		}
		if o.NewAfterChars > o.MaxChunkSize {
			return fmt.Errorf("%w: new_after_chars (%d) exceeds max_chunk_size (%d)",
				ErrConfiguration, o.NewAfterChars, o.MaxChunkSize)
		}
	}

	return nil
}
