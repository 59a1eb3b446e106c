package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/config"
	"github.com/ironsheep/docscan-mcp/internal/logger"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("docscan-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("docscan-mcp - MCP server for document page detection and rectification")
			fmt.Println()
			fmt.Println("Usage: docscan-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  DOCSCAN_LOG_LEVEL=info                     debug, info, warn or error")
			fmt.Println("  DOCSCAN_LOG_FORMAT=text                    text or json")
			fmt.Println("  DOCSCAN_STRATEGIES=text-hint,edge-contour  detector order (edge-contour, connected-component, text-hint)")
			fmt.Println("  DOCSCAN_BINARIZE=otsu                      connected-component mask: otsu or brightness")
			fmt.Println("  DOCSCAN_WORKING_HEIGHT=500                 preview detection height, 0 for full size")
			fmt.Println("  DOCSCAN_OCR_LANGUAGE=eng                   Tesseract language")
			fmt.Println("  DOCSCAN_OCR_TIMEOUT=10s                    limit for one OCR call")
			fmt.Println("  DOCSCAN_FILTER=none                        output filter: none, grayscale, bw or color")
			fmt.Println("  DOCSCAN_JPEG_QUALITY=70                    output JPEG quality (1-100)")
			fmt.Println("  DOCSCAN_CACHE_SIZE=16                      decoded frames kept in memory")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "docscan-mcp: %v\n", err)
		os.Exit(2)
	}

	// stdout is reserved for the MCP protocol
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"commit":     GitCommit,
		"strategies": cfg.Strategies,
	}).Info("starting docscan-mcp")

	var rec ocr.Recognizer
	if cfg.UsesOCR() {
		rec = ocr.NewTesseract(cfg.OCRLanguage, cfg.OCRTimeout, log)
	}

	server.Version = Version
	srv, err := server.New(cfg, rec, log)
	if err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
	if err := srv.Run(); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
