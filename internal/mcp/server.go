package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/certkit/certpage-mcp/internal/classifier"
	"github.com/certkit/certpage-mcp/internal/merge"
	"github.com/certkit/certpage-mcp/internal/publisher"
	"github.com/certkit/certpage-mcp/internal/remote"
	"github.com/certkit/certpage-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "certpage-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.certpage"

	// EnvRulesFile optionally points at a YAML classifier rules file
	EnvRulesFile = "CERTPAGE_RULES"
	// EnvMergeStrategy optionally sets the default merge strategy
	EnvMergeStrategy = "CERTPAGE_MERGE_STRATEGY"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	storage   storage.Storage
	publisher *publisher.Publisher
	cls       *classifier.Classifier
}

// NewServer creates a new MCP server instance. The page store client and
// engine defaults come from the environment.
func NewServer(dbPath string) (*Server, error) {
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".certpage")
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dbFile := filepath.Join(dbPath, "certpage.db")

	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	pageStore, err := remote.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize page store client: %w", err)
	}

	opts, err := engineDefaultsFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	pub := publisher.New(pageStore, store, opts)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:       mcpServer,
		storage:   store,
		publisher: pub,
		cls:       opts.Classifier,
	}

	s.registerTools()

	return s, nil
}

// engineDefaultsFromEnv builds the default engine options from
// CERTPAGE_RULES and CERTPAGE_MERGE_STRATEGY
func engineDefaultsFromEnv() (merge.Options, error) {
	opts := merge.Options{Classifier: classifier.New()}

	if rulesFile := os.Getenv(EnvRulesFile); rulesFile != "" {
		rules, err := classifier.LoadRulesFile(rulesFile)
		if err != nil {
			return opts, fmt.Errorf("failed to load classifier rules: %w", err)
		}
		opts.Classifier = classifier.New(rules...)
	}

	strategy, err := merge.ParseStrategy(os.Getenv(EnvMergeStrategy))
	if err != nil {
		return opts, fmt.Errorf("invalid %s: %w", EnvMergeStrategy, err)
	}
	opts.Strategy = strategy

	return opts, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(mergeRecordsTool(), s.handleMergeRecords)
	s.mcp.AddTool(previewMergeTool(), s.handlePreviewMerge)
	s.mcp.AddTool(classifyCategoryTool(), s.handleClassifyCategory)
	s.mcp.AddTool(getHistoryTool(), s.handleGetHistory)
	s.mcp.AddTool(setPageStrategyTool(), s.handleSetPageStrategy)
}
