package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/splitfire/splitfire/internal/config"
	"github.com/splitfire/splitfire/internal/mcp"
	"github.com/splitfire/splitfire/internal/pdf"
	"github.com/splitfire/splitfire/internal/service"
	"github.com/splitfire/splitfire/internal/token"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "split":
		err = runSplit(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "range":
		err = runRange(os.Args[2:])
	case "config":
		err = runConfig(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("splitfire %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildService resolves config and wires document access, tokenizer, and
// limits into a Service.
func buildService(configPath string) (*service.Service, error) {
	cfg, err := config.Resolve(config.ResolveOptions{ConfigPath: configPath})
	if err != nil {
		return nil, err
	}

	access := pdf.NewAccess(pdf.Options{
		MaxFileBytes: int64(cfg.MaxFileSizeMB.Int(config.DefaultMaxFileSizeMB)) * 1024 * 1024,
	})

	// Tokenizer falls back to the character heuristic when the BPE encoding
	// cannot be loaded (offline first run).
	var counter token.Counter
	if tk, err := token.NewTiktoken(cfg.Encoding.Value); err == nil {
		counter = token.Fallback{Primary: tk, Secondary: token.Estimator{}}
	} else {
		fmt.Fprintf(os.Stderr, "Warning: %v; falling back to character estimate\n", err)
		counter = token.Estimator{}
	}

	limits := service.Limits{
		MaxPagesPerChunk:  cfg.MaxPagesPerChunk.Int(config.DefaultMaxPagesPerChunk),
		MaxTokensPerChunk: cfg.MaxTokenLimit.Int(config.DefaultMaxTokenLimit),
		DefaultOutputDir:  cfg.OutputDir.Value,
	}

	return service.New(access, counter, limits, cfg.Thresholds), nil
}

func runServe(args []string) error {
	configPath := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			i++
			if i >= len(args) {
				return fmt.Errorf("--config needs a path")
			}
			configPath = args[i]
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	svc, err := buildService(configPath)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.ServerConfig{Service: svc, Version: version})
	return mcp.ServeStdio(srv)
}

func runInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: splitfire info <pdf>")
	}

	svc, err := buildService("")
	if err != nil {
		return err
	}

	result, err := svc.Info(args[0])
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runSplit(args []string) error {
	var paths []string
	pagesPerChunk := 0
	outputDir := ""
	prefix := ""

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--pages" || args[i] == "-p":
			i++
			n, err := intArg(args, i, "--pages")
			if err != nil {
				return err
			}
			pagesPerChunk = n
		case args[i] == "--output" || args[i] == "-o":
			i++
			s, err := stringArg(args, i, "--output")
			if err != nil {
				return err
			}
			outputDir = s
		case args[i] == "--prefix":
			i++
			s, err := stringArg(args, i, "--prefix")
			if err != nil {
				return err
			}
			prefix = s
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			paths = append(paths, args[i])
		}
	}
	if len(paths) != 1 {
		return fmt.Errorf("usage: splitfire split <pdf> [--pages N] [--output DIR] [--prefix NAME]")
	}

	svc, err := buildService("")
	if err != nil {
		return err
	}

	result, err := svc.Split(paths[0], pagesPerChunk, outputDir, prefix)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", result.Message)
	for _, c := range result.Chunks {
		fmt.Printf("  [%d] pages %-9s %s\n", c.ChunkID, c.Pages, c.FilePath)
	}
	return nil
}

func runExtract(args []string) error {
	var paths []string
	opts := service.DefaultExtractOptions()

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--max-tokens" || args[i] == "-t":
			i++
			n, err := intArg(args, i, "--max-tokens")
			if err != nil {
				return err
			}
			opts.MaxTokensPerChunk = n
		case args[i] == "--no-page-numbers":
			opts.IncludePageNumbers = false
		case args[i] == "--raw":
			opts.CleanText = false
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			paths = append(paths, args[i])
		}
	}
	if len(paths) != 1 {
		return fmt.Errorf("usage: splitfire extract <pdf> [--max-tokens N] [--no-page-numbers] [--raw]")
	}

	svc, err := buildService("")
	if err != nil {
		return err
	}

	result, err := svc.ExtractText(paths[0], opts)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runRange(args []string) error {
	var positional []string
	outputPath := ""

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--output" || args[i] == "-o":
			i++
			s, err := stringArg(args, i, "--output")
			if err != nil {
				return err
			}
			outputPath = s
		case strings.HasPrefix(args[i], "-") && !isNumber(args[i]):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			positional = append(positional, args[i])
		}
	}
	if len(positional) != 3 {
		return fmt.Errorf("usage: splitfire range <pdf> <start> <end> [--output FILE]")
	}

	start, err := strconv.Atoi(positional[1])
	if err != nil {
		return fmt.Errorf("start page %q is not a number", positional[1])
	}
	end, err := strconv.Atoi(positional[2])
	if err != nil {
		return fmt.Errorf("end page %q is not a number", positional[2])
	}

	svc, err := buildService("")
	if err != nil {
		return err
	}

	result, err := svc.ExtractRange(positional[0], start, end, outputPath)
	if err != nil {
		return err
	}

	fmt.Printf("Extracted pages %s (%d pages) to %s\n", result.ExtractedPages, result.PageCount, result.OutputFile)
	return nil
}

// runConfig prints the resolved settings with their provenance.
func runConfig(args []string) error {
	configPath := ""
	if len(args) > 0 {
		configPath = args[0]
	}
	cfg, err := config.Resolve(config.ResolveOptions{ConfigPath: configPath})
	if err != nil {
		return err
	}
	return printJSON(cfg)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func intArg(args []string, i int, flag string) (int, error) {
	s, err := stringArg(args, i, flag)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", flag, s)
	}
	return n, nil
}

func stringArg(args []string, i int, flag string) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s needs a value", flag)
	}
	return args[i], nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func printUsage() {
	fmt.Printf(`splitfire %s — Token-aware PDF splitting for LLM workflows

Usage:
  splitfire <command> [arguments]

Commands:
  serve               Run the MCP server on stdio
  info <pdf>          Show metadata and chunking estimates
  split <pdf>         Split into smaller PDFs by page count
  extract <pdf>       Extract text in token-bounded chunks
  range <pdf> <s> <e> Extract a page range to a new PDF
  config [path]       Show resolved settings and their sources
  version             Print version

Split Flags:
  -p, --pages N       Pages per chunk (default: 20)
  -o, --output DIR    Output directory
      --prefix NAME   Chunk filename prefix (default: chunk)

Extract Flags:
  -t, --max-tokens N  Token budget per chunk (default: 8000)
      --no-page-numbers  Omit page markers
      --raw           Skip text cleaning

Serve Flags:
      --config PATH   Config file (default: ~/.splitfire/config.yaml)

Flags:
  -h, --help          Show this help message
  -v, --version       Print version

Environment:
  SPLITFIRE_MAX_FILE_SIZE_MB, SPLITFIRE_MAX_PAGES_PER_CHUNK,
  SPLITFIRE_MAX_TOKEN_LIMIT, SPLITFIRE_OUTPUT_DIR, SPLITFIRE_ENCODING
`, version)
}
