// Package mcp provides the Model Context Protocol server for Splitfire.
//
// It exposes the PDF operations (info, split, extract-text, extract-range)
// as MCP tools over stdio so coding assistants can break large documents
// into digestible pieces. Tool handlers validate arguments, delegate to the
// service layer, and return results as indented JSON.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/splitfire/splitfire/internal/chunk"
	"github.com/splitfire/splitfire/internal/pdf"
	"github.com/splitfire/splitfire/internal/service"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Service *service.Service
	Version string // version string for MCP server info
}

// NewServer creates a configured MCP server with all Splitfire tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"Splitfire",
		ver,
		server.WithToolCapabilities(false),
	)

	registerInfoTool(s, cfg.Service)
	registerSplitTool(s, cfg.Service)
	registerExtractTextTool(s, cfg.Service)
	registerExtractRangeTool(s, cfg.Service)

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// --- Tools ---

func registerInfoTool(s *server.MCPServer, svc *service.Service) {
	tool := mcp.NewTool("pdf_info",
		mcp.WithDescription("Get metadata and processing estimates for a PDF: page count, file size, title, sampled text density, estimated token total, and a recommended pages-per-chunk value with a complexity tier."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("pdf_path")
		if err != nil {
			return mcp.NewToolResultError("pdf_path is required"), nil
		}

		result, err := svc.Info(path)
		if err != nil {
			return toolError("info", err), nil
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerSplitTool(s *server.MCPServer, svc *service.Service) {
	tool := mcp.NewTool("pdf_split",
		mcp.WithDescription("Split a PDF into smaller PDF files of at most pages_per_chunk pages each, preserving all visual content. Chunk files are named {prefix}_{NN}_pages_{SSS}-{EEE}.pdf in page order."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Path to the source PDF file"),
		),
		mcp.WithNumber("pages_per_chunk",
			mcp.Description("Pages per chunk (default: 20)"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Output directory (default: a {name}_chunks directory beside the source)"),
		),
		mcp.WithString("prefix",
			mcp.Description("Filename prefix for chunk files (default: chunk)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("pdf_path")
		if err != nil {
			return mcp.NewToolResultError("pdf_path is required"), nil
		}

		pagesPerChunk := 0
		if v, err := req.RequireFloat("pages_per_chunk"); err == nil {
			pagesPerChunk = int(v)
		}

		outputDir := ""
		if v, err := req.RequireString("output_dir"); err == nil {
			outputDir = v
		}

		prefix := ""
		if v, err := req.RequireString("prefix"); err == nil {
			prefix = v
		}

		result, err := svc.Split(path, pagesPerChunk, outputDir, prefix)
		if err != nil {
			return toolError("split", err), nil
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerExtractTextTool(s *server.MCPServer, svc *service.Service) {
	tool := mcp.NewTool("pdf_extract_text",
		mcp.WithDescription("Extract text from a PDF in token-aware chunks for LLM consumption. Consecutive pages are grouped greedily under max_tokens_per_chunk; a single page exceeding the budget is returned alone, flagged oversized."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
		mcp.WithNumber("max_tokens_per_chunk",
			mcp.Description("Maximum tokens per text chunk (default: 8000)"),
		),
		mcp.WithBoolean("include_page_numbers",
			mcp.Description("Insert '--- Page N ---' markers between pages (default: true)"),
		),
		mcp.WithBoolean("clean_text",
			mcp.Description("Normalize whitespace and strip artifacts before counting (default: true)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("pdf_path")
		if err != nil {
			return mcp.NewToolResultError("pdf_path is required"), nil
		}

		opts := service.DefaultExtractOptions()
		if v, err := req.RequireFloat("max_tokens_per_chunk"); err == nil {
			opts.MaxTokensPerChunk = int(v)
		}
		opts.IncludePageNumbers = req.GetBool("include_page_numbers", opts.IncludePageNumbers)
		opts.CleanText = req.GetBool("clean_text", opts.CleanText)

		result, err := svc.ExtractText(path, opts)
		if err != nil {
			return toolError("extract text", err), nil
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerExtractRangeTool(s *server.MCPServer, svc *service.Service) {
	tool := mcp.NewTool("pdf_extract_range",
		mcp.WithDescription("Extract a specific page range from a PDF as a new PDF file. Pages are 1-indexed and inclusive on both ends."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Path to the source PDF"),
		),
		mcp.WithNumber("start_page",
			mcp.Required(),
			mcp.Description("Starting page number (1-indexed)"),
		),
		mcp.WithNumber("end_page",
			mcp.Required(),
			mcp.Description("Ending page number (1-indexed, inclusive)"),
		),
		mcp.WithString("output_path",
			mcp.Description("Output file path (default: {name}_pages_{S}-{E}.pdf beside the source)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("pdf_path")
		if err != nil {
			return mcp.NewToolResultError("pdf_path is required"), nil
		}
		start, err := req.RequireFloat("start_page")
		if err != nil {
			return mcp.NewToolResultError("start_page is required"), nil
		}
		end, err := req.RequireFloat("end_page")
		if err != nil {
			return mcp.NewToolResultError("end_page is required"), nil
		}

		outputPath := ""
		if v, err := req.RequireString("output_path"); err == nil {
			outputPath = v
		}

		result, err := svc.ExtractRange(path, int(start), int(end), outputPath)
		if err != nil {
			return toolError("extract range", err), nil
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

// toolError maps service errors onto user-facing tool results. The message
// keeps the offending bound; the prefix names the failed operation.
func toolError(op string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, chunk.ErrInvalidArgument),
		errors.Is(err, chunk.ErrOutOfRange),
		errors.Is(err, pdf.ErrNotFound),
		errors.Is(err, pdf.ErrUnreadable):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s error: %v", op, err))
	}
}
