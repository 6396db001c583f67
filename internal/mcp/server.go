// Package mcp provides an MCP (Model Context Protocol) server for sweep.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/sweep/internal/config"
	"github.com/nvandessel/sweep/internal/logging"
	"github.com/nvandessel/sweep/internal/ratelimit"
	"github.com/nvandessel/sweep/internal/store"
)

// Server wraps the MCP SDK server and provides sweep-specific functionality.
type Server struct {
	server       *sdk.Server
	store        store.ResultStore
	root         string
	settings     *config.SweepConfig
	logger       *slog.Logger
	events       *logging.EventLog
	toolLimiters *ratelimit.ToolLimiters
	auditLogger  *AuditLogger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "sweep")
	Version string // Server version
	Root    string // Project root directory

	// Settings supplies defaults for omitted tool arguments. Nil uses
	// config.Default().
	Settings *config.SweepConfig

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger

	// Store overrides the history store. Nil opens <Root>/.sweep/sweep.db.
	Store store.ResultStore
}

// NewServer creates a new MCP server with sweep tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	resultStore := cfg.Store
	if resultStore == nil {
		sqliteStore, err := store.NewSQLiteStore(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to open result store: %w", err)
		}
		resultStore = sqliteStore
	}

	events := logging.NewEventLog(store.DataDir(cfg.Root), settings.Logging.Level)

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		store:        resultStore,
		root:         cfg.Root,
		settings:     settings,
		logger:       logger,
		events:       events,
		toolLimiters: ratelimit.NewToolLimiters(),
		auditLogger:  NewAuditLogger(cfg.Root),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			s.logger.Info("shutting down on signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info("mcp server listening on stdio", "root", s.root)
	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.Close()

	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	s.auditLogger.Close()
	s.events.Close()
	return s.store.Close()
}
