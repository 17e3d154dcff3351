package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/MikaTepe/keyscope/internal/extractor"
	"github.com/MikaTepe/keyscope/internal/logging"
	"github.com/MikaTepe/keyscope/internal/scorer"
	"github.com/MikaTepe/keyscope/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "keyscope-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the job database
	DefaultDBPath = "~/.keyscope"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	storage   storage.Storage
	scorer    scorer.Scorer
	extractor *extractor.Extractor
}

// NewServer creates a new MCP server instance
func NewServer(dbPath string, log *logging.Logger) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".keyscope")
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "keyscope.db")
	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	sc, err := scorer.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize scorer: %w", err)
	}

	ext := extractor.New(sc, log)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:       mcpServer,
		storage:   store,
		scorer:    sc,
		extractor: ext,
	}

	if err := s.registerTools(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.scorer.Close()
		_ = s.storage.Close()
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(extractKeywordsTool(), s.handleExtractKeywords)
	s.mcp.AddTool(extractKeywordsBatchTool(), s.handleExtractKeywordsBatch)
	s.mcp.AddTool(getServiceStatusTool(), s.handleGetServiceStatus)
	return nil
}
