// Package service implements the four user-facing PDF operations — info,
// split, extract-text, and extract-range — by composing the document-access
// and token-counting capabilities with the chunking core.
//
// Operations are stateless: every call opens the document fresh, produces a
// result, and releases it. Callers own timeouts and retries; nothing here
// blocks beyond the underlying file I/O.
package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/splitfire/splitfire/internal/chunk"
	"github.com/splitfire/splitfire/internal/estimate"
	"github.com/splitfire/splitfire/internal/pdf"
	"github.com/splitfire/splitfire/internal/token"
)

// Defaults mirroring the tool parameter defaults.
const (
	DefaultPagesPerChunk  = 20
	DefaultMaxChunkTokens = 8000
	DefaultChunkPrefix    = "chunk"

	// densitySamplePages is how many leading pages are sampled to estimate
	// average text density in Info.
	densitySamplePages = 3
)

// Limits bounds user-supplied parameters. Values come from resolved config.
type Limits struct {
	MaxPagesPerChunk  int
	MaxTokensPerChunk int
	DefaultOutputDir  string
}

// DefaultLimits returns the built-in limits used when config is silent.
func DefaultLimits() Limits {
	return Limits{
		MaxPagesPerChunk:  200,
		MaxTokensPerChunk: 32000,
	}
}

// Service wires the capabilities into the four operations.
type Service struct {
	access     pdf.Access
	counter    token.Counter
	limits     Limits
	thresholds estimate.Thresholds
}

// New creates a Service. A nil counter falls back to the character
// heuristic; zero thresholds get the defaults.
func New(access pdf.Access, counter token.Counter, limits Limits, th estimate.Thresholds) *Service {
	if counter == nil {
		counter = token.Estimator{}
	}
	if limits.MaxPagesPerChunk <= 0 {
		limits.MaxPagesPerChunk = DefaultLimits().MaxPagesPerChunk
	}
	if limits.MaxTokensPerChunk <= 0 {
		limits.MaxTokensPerChunk = DefaultLimits().MaxTokensPerChunk
	}
	if th == (estimate.Thresholds{}) {
		th = estimate.DefaultThresholds()
	}
	return &Service{access: access, counter: counter, limits: limits, thresholds: th}
}

// --- Info ---

// InfoResult is the metadata and processing-estimate report for a document.
type InfoResult struct {
	PDF                  pdf.DocumentInfo  `json:"pdf_info"`
	AvgCharsPerPage      int               `json:"avg_chars_per_page"`
	EstimatedTotalTokens int               `json:"estimated_total_tokens"`
	EstimatedChunks      map[string]int    `json:"estimated_chunks"`
	EstimatedMinutes     int               `json:"processing_time_estimate_minutes"`
	Recommendation       estimate.Estimate `json:"recommendation"`
}

// Info opens a document and reports metadata, sampled text density, and a
// recommended pages-per-chunk value with a complexity tier.
func (s *Service) Info(path string) (InfoResult, error) {
	doc, err := s.access.Open(path)
	if err != nil {
		return InfoResult{}, err
	}
	defer doc.Close()

	info := doc.Info()
	total := doc.PageCount()

	// Sample leading pages for density. Extraction failures on individual
	// sample pages degrade the estimate instead of failing the call.
	sample := densitySamplePages
	if total < sample {
		sample = total
	}
	sampledChars := 0
	for page := 1; page <= sample; page++ {
		text, err := doc.PageText(page)
		if err != nil {
			continue
		}
		sampledChars += len(text)
	}
	avgChars := 0
	if sample > 0 {
		avgChars = sampledChars / sample
	}

	rec, err := estimate.Compute(total, info.FileSizeBytes, float64(avgChars), s.thresholds)
	if err != nil {
		return InfoResult{}, err
	}

	// Rough whole-document token estimate at ~4 chars per token.
	estimatedTokens := (avgChars * total) / 4

	// ~50 pages a minute, never reported as zero.
	minutes := total / 50
	if minutes < 1 {
		minutes = 1
	}

	return InfoResult{
		PDF:                  info,
		AvgCharsPerPage:      avgChars,
		EstimatedTotalTokens: estimatedTokens,
		EstimatedChunks:      estimate.ChunkCounts(total, 5, 10, 20, 50),
		EstimatedMinutes:     minutes,
		Recommendation:       rec,
	}, nil
}

// --- Split ---

// ChunkFile describes one written page-range PDF.
type ChunkFile struct {
	ChunkID   int    `json:"chunk_id"`
	FilePath  string `json:"file_path"`
	Pages     string `json:"pages"`
	PageCount int    `json:"page_count"`
}

// SplitResult reports a completed split operation.
type SplitResult struct {
	SourcePDF       string      `json:"source_pdf"`
	OutputDirectory string      `json:"output_directory"`
	ChunksCreated   int         `json:"chunks_created"`
	Chunks          []ChunkFile `json:"chunks"`
	Message         string      `json:"message"`
}

// Split partitions the document into contiguous page ranges of at most
// pagesPerChunk pages and writes one PDF per range into outputDir.
// File naming is {prefix}_{NN}_pages_{SSS}-{EEE}.pdf: the range-to-file
// mapping is 1:1 and ordered.
func (s *Service) Split(path string, pagesPerChunk int, outputDir, prefix string) (SplitResult, error) {
	if pagesPerChunk == 0 {
		pagesPerChunk = DefaultPagesPerChunk
	}
	if pagesPerChunk < 0 || pagesPerChunk > s.limits.MaxPagesPerChunk {
		return SplitResult{}, fmt.Errorf("%w: pages per chunk %d outside 1-%d",
			chunk.ErrInvalidArgument, pagesPerChunk, s.limits.MaxPagesPerChunk)
	}
	if prefix == "" {
		prefix = DefaultChunkPrefix
	}

	doc, err := s.access.Open(path)
	if err != nil {
		return SplitResult{}, err
	}
	defer doc.Close()

	ranges, err := chunk.Partition(doc.PageCount(), pagesPerChunk)
	if err != nil {
		return SplitResult{}, err
	}

	outDir := s.resolveOutputDir(path, outputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return SplitResult{}, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	files := make([]ChunkFile, 0, len(ranges))
	for i, r := range ranges {
		name := fmt.Sprintf("%s_%02d_pages_%03d-%03d.pdf", prefix, i+1, r.Start, r.End)
		dest := filepath.Join(outDir, name)
		if err := doc.WriteSubset(r, dest); err != nil {
			return SplitResult{}, err
		}
		files = append(files, ChunkFile{
			ChunkID:   i + 1,
			FilePath:  dest,
			Pages:     r.String(),
			PageCount: r.Pages(),
		})
	}

	return SplitResult{
		SourcePDF:       path,
		OutputDirectory: outDir,
		ChunksCreated:   len(files),
		Chunks:          files,
		Message:         fmt.Sprintf("Split PDF into %d chunks", len(files)),
	}, nil
}

// resolveOutputDir picks, in order: the caller's directory, the configured
// default, or a {stem}_chunks directory beside the source.
func (s *Service) resolveOutputDir(srcPath, outputDir string) string {
	if outputDir != "" {
		return outputDir
	}
	if s.limits.DefaultOutputDir != "" {
		return s.limits.DefaultOutputDir
	}
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	return filepath.Join(filepath.Dir(srcPath), stem+"_chunks")
}

// --- ExtractText ---

// ExtractOptions controls text extraction.
type ExtractOptions struct {
	// MaxTokensPerChunk is the per-chunk token budget; 0 means the default.
	MaxTokensPerChunk int
	// IncludePageNumbers inserts a "--- Page N ---" marker before each page.
	IncludePageNumbers bool
	// CleanText normalizes extracted text before counting.
	CleanText bool
}

// DefaultExtractOptions mirrors the tool defaults.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		MaxTokensPerChunk:  DefaultMaxChunkTokens,
		IncludePageNumbers: true,
		CleanText:          true,
	}
}

// TextChunk is one token-bounded chunk of extracted text.
type TextChunk struct {
	ChunkID    int    `json:"chunk_id"`
	Text       string `json:"text"`
	TokenCount int    `json:"token_count"`
	Pages      []int  `json:"pages"`
	PageRange  string `json:"page_range"`
	Oversized  bool   `json:"oversized,omitempty"`
}

// ExtractResult reports a completed extraction.
type ExtractResult struct {
	SourcePDF         string      `json:"source_pdf"`
	TotalPages        int         `json:"total_pages"`
	ChunksCreated     int         `json:"chunks_created"`
	TotalTokens       int         `json:"total_tokens"`
	AvgTokensPerChunk int         `json:"avg_tokens_per_chunk"`
	MaxChunkTokens    int         `json:"max_tokens_per_chunk"`
	Chunks            []TextChunk `json:"chunks"`
}

// ExtractText pulls per-page text, counts tokens once per page, and groups
// consecutive pages into chunks under the token budget. A page with no
// extractable text becomes a zero-token block, not an error.
func (s *Service) ExtractText(path string, opts ExtractOptions) (ExtractResult, error) {
	if opts.MaxTokensPerChunk == 0 {
		opts.MaxTokensPerChunk = DefaultMaxChunkTokens
	}
	if opts.MaxTokensPerChunk < 0 || opts.MaxTokensPerChunk > s.limits.MaxTokensPerChunk {
		return ExtractResult{}, fmt.Errorf("%w: token budget %d outside 1-%d",
			chunk.ErrInvalidArgument, opts.MaxTokensPerChunk, s.limits.MaxTokensPerChunk)
	}

	doc, err := s.access.Open(path)
	if err != nil {
		return ExtractResult{}, err
	}
	defer doc.Close()

	total := doc.PageCount()
	blocks := make([]chunk.TextBlock, 0, total)

	for page := 1; page <= total; page++ {
		text, err := doc.PageText(page)
		if err != nil {
			return ExtractResult{}, err
		}
		if opts.CleanText {
			text = chunk.CleanText(text)
		}
		if opts.IncludePageNumbers {
			text = fmt.Sprintf("\n--- Page %d ---\n%s", page, text)
		}

		n, err := s.counter.Count(text)
		if err != nil {
			return ExtractResult{}, fmt.Errorf("counting tokens on page %d: %w", page, err)
		}
		blocks = append(blocks, chunk.TextBlock{Index: page - 1, Text: text, Tokens: n})
	}

	chunks, err := chunk.Split(blocks, opts.MaxTokensPerChunk)
	if err != nil {
		return ExtractResult{}, err
	}

	result := ExtractResult{
		SourcePDF:  filepath.Base(path),
		TotalPages: total,
		Chunks:     make([]TextChunk, 0, len(chunks)),
	}

	for i, c := range chunks {
		var sb strings.Builder
		pages := make([]int, 0, len(c.Blocks))
		for _, b := range c.Blocks {
			sb.WriteString(b.Text)
			pages = append(pages, b.Index+1)
		}
		result.Chunks = append(result.Chunks, TextChunk{
			ChunkID:    i + 1,
			Text:       strings.TrimSpace(sb.String()),
			TokenCount: c.TotalTokens,
			Pages:      pages,
			PageRange:  c.PageSpan().String(),
			Oversized:  c.Oversized,
		})
		result.TotalTokens += c.TotalTokens
		if c.TotalTokens > result.MaxChunkTokens {
			result.MaxChunkTokens = c.TotalTokens
		}
	}

	result.ChunksCreated = len(result.Chunks)
	if result.ChunksCreated > 0 {
		result.AvgTokensPerChunk = result.TotalTokens / result.ChunksCreated
	}
	return result, nil
}

// --- ExtractRange ---

// RangeResult reports a completed page-range extraction.
type RangeResult struct {
	SourcePDF      string `json:"source_pdf"`
	ExtractedPages string `json:"extracted_pages"`
	PageCount      int    `json:"page_count"`
	OutputFile     string `json:"output_file"`
}

// ExtractRange writes the inclusive page range [startPage, endPage] to a new
// PDF. An empty outputPath defaults to {stem}_pages_{S}-{E}.pdf beside the
// source.
func (s *Service) ExtractRange(path string, startPage, endPage int, outputPath string) (RangeResult, error) {
	doc, err := s.access.Open(path)
	if err != nil {
		return RangeResult{}, err
	}
	defer doc.Close()

	r, err := chunk.ValidateRange(startPage, endPage, doc.PageCount())
	if err != nil {
		return RangeResult{}, err
	}

	if outputPath == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		outputPath = filepath.Join(filepath.Dir(path), fmt.Sprintf("%s_pages_%d-%d.pdf", stem, r.Start, r.End))
	}

	if err := doc.WriteSubset(r, outputPath); err != nil {
		return RangeResult{}, err
	}

	return RangeResult{
		SourcePDF:      path,
		ExtractedPages: r.String(),
		PageCount:      r.Pages(),
		OutputFile:     outputPath,
	}, nil
}
