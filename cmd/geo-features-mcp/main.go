package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/geo-features-mcp/internal/config"
	"github.com/ironsheep/geo-features-mcp/internal/features"
	"github.com/ironsheep/geo-features-mcp/internal/logging"
	"github.com/ironsheep/geo-features-mcp/internal/pipeline"
	"github.com/ironsheep/geo-features-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var configPath string
	var rest []string
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--version" || arg == "-v" || arg == "version":
			fmt.Printf("geo-features-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Backend:    %s\n", pipeline.Backend())
			return 0
		case arg == "--help" || arg == "-h" || arg == "help":
			printHelp()
			return 0
		case arg == "--config" || arg == "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a file argument")
				return 2
			}
			i++
			configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		default:
			rest = append(rest, arg)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		return 1
	}
	defer logging.Sync()

	server.Version = Version
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", zap.Error(err))
		return 1
	}

	if len(rest) > 0 && rest[0] == "process" {
		return processOnce(srv, rest[1:])
	}
	if len(rest) > 0 {
		fmt.Fprintf(os.Stderr, "unknown argument %q, see --help\n", rest[0])
		return 2
	}

	logger.Debug("starting MCP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit))
	if err := srv.Run(); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	return 0
}

// processOnce handles `process <image> [feature_type]`: one extraction and
// vectorization, result printed as JSON on stdout.
func processOnce(srv *server.Server, args []string) int {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, "usage: geo-features-mcp process <image> [feature_type]")
		return 2
	}
	ft := features.Default
	if len(args) == 2 {
		ft = features.ParseFeatureType(args[1])
	}

	result, err := srv.Process(args[0], ft)
	if err != nil {
		fmt.Fprintf(os.Stderr, "processing failed: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write result: %v\n", err)
		return 1
	}
	return 0
}

func printHelp() {
	fmt.Println("geo-features-mcp - MCP server extracting geographic features from aerial images")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  geo-features-mcp [--config file]                                Serve MCP on stdin/stdout")
	fmt.Println("  geo-features-mcp [--config file] process <image> [feature_type] Process one image and print the result")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c     YAML configuration file (default: ./config.yaml if present)")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Printf("Feature types: %s (default %s)\n", strings.Join(features.Names(), ", "), features.Default)
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  GEOFEATURES_PATHS_UPLOAD_DIR     Where uploads are stored (default ./uploads)")
	fmt.Println("  GEOFEATURES_PATHS_OUTPUT_DIR     Where masks and GeoJSON are written (default ./outputs)")
	fmt.Println("  GEOFEATURES_LOG_MODE             production (JSON) or development (console)")
	fmt.Println("  IMAGE_MCP_LOG_LEVEL=debug        Enable debug logging")
	fmt.Println()
	fmt.Println("Any configuration key can be set as GEOFEATURES_<SECTION>_<KEY>.")
	fmt.Println("Logs go to stderr; stdout carries the MCP protocol.")
}
