// Command docfmt-mcp serves formatting checks to MCP clients over stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tsawler/docfmt/config"
	"github.com/tsawler/docfmt/internal/logging"
	"github.com/tsawler/docfmt/internal/mcptools"
	"github.com/tsawler/docfmt/internal/services"
)

const (
	version    = "0.1.0"
	serverName = "docfmt-mcp"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s version %s\n", serverName, version)
		return
	}

	// stdout carries the protocol.
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File, Output: os.Stderr})

	svc, cleanup, err := services.FromConfig(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}
	defer cleanup()

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		nil,
	)
	mcptools.New(svc).Register(server)
	log.Printf("%s v%s ready", serverName, version)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
