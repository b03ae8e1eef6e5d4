package main

import (
	"fmt"
	"os"

	"github.com/dotback/Gemini-Transparent-Background/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("chromakey-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("chromakey-mcp - MCP server for green/blue-screen background removal")
			fmt.Println()
			fmt.Println("Usage: chromakey-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=debug       Log level: debug, info, warn, error\n", server.EnvLogLevel)
			fmt.Printf("  %s=/path      Directory for keyed images\n", server.EnvOutputDir)
			fmt.Printf("  %s=green            Default key: green, blue or #RRGGBB\n", server.EnvKey)
			fmt.Printf("  %s=0.7          Default despill strength\n", server.EnvDespill)
			fmt.Printf("  %s=2            Default feather radius\n", server.EnvFeather)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	cfg, err := server.ConfigFromEnv(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chromakey-mcp: %v\n", err)
		os.Exit(2)
	}

	// stdout is for MCP protocol
	log := server.NewLogger(os.Stderr, cfg.LogLevel)
	log.Debug().Str("version", Version).Str("built", BuildTime).Str("commit", GitCommit).Msg("starting")

	srv := server.New(cfg, log)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
