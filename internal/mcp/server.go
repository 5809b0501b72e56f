package mcp

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/wordshift/internal/cache"
	"github.com/standardbeagle/wordshift/internal/config"
	"github.com/standardbeagle/wordshift/internal/dictionary"
	"github.com/standardbeagle/wordshift/internal/grid"
	"github.com/standardbeagle/wordshift/internal/version"
)

// Server exposes pair search and grid conversion as MCP tools.
type Server struct {
	cfg              *config.Config
	server           *mcp.Server
	diagnosticLogger *DiagnosticLogger

	layout *grid.Layout
	words  *cache.WordSetCache

	catalogMu sync.Mutex
	catalog   *dictionary.Catalog
}

// NewServer creates the MCP server for cfg. A nil logger discards
// diagnostics.
func NewServer(cfg *config.Config, logger *DiagnosticLogger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = NoOpLogger
	}

	s := &Server{
		cfg:              cfg,
		diagnosticLogger: logger,
		layout:           grid.DefaultLayout(),
		words:            cache.NewWordSetCache(cache.DefaultCacheConfig()),
	}
	logger.Printf("Project root configured: %s", cfg.Project.Root)

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "wordshift-mcp-server",
		Version: version.Version,
	}, nil)
	s.registerTools()

	return s, nil
}

// WordCache returns the dictionary cache so callers can invalidate entries.
func (s *Server) WordCache() *cache.WordSetCache {
	return s.words
}

// dictionaries returns the discovered catalog, discovering it on first use
// or when refresh is set.
func (s *Server) dictionaries(ctx context.Context, refresh bool) (*dictionary.Catalog, error) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()

	if s.catalog != nil && !refresh {
		return s.catalog, nil
	}

	start := time.Now()
	catalog, err := dictionary.Discover(ctx, s.cfg.DiscoverOptions())
	if err != nil {
		return nil, err
	}
	s.diagnosticLogger.Printf("Discovered %d dictionaries in %v", len(catalog.Entries()), time.Since(start))
	s.catalog = catalog
	return catalog, nil
}

// InvalidateCatalog forces the next request to rediscover dictionaries.
func (s *Server) InvalidateCatalog() {
	s.catalogMu.Lock()
	s.catalog = nil
	s.catalogMu.Unlock()
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Describe the wordshift tools and server version. Start here.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool name to describe (e.g. 'find_pairs', 'version')",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_pairs",
		Description: "Find dictionary words whose substituted form is also a dictionary word. Results are sorted longest first and paged.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"dictionary": {
					Type:        "string",
					Description: "Dictionary name, base name, path or URL. Defaults to the configured dictionary.",
				},
				"mapping": {
					Type:        "string",
					Description: "Substitution map as CSV lines 'source,destination'",
				},
				"grid": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Value grid rows (up to 5 rows of 18 cells). Used when mapping is empty.",
				},
				"parse_mode": {
					Type:        "string",
					Description: "CSV parse mode: lenient or strict",
				},
				"identity_pairs": {
					Type:        "string",
					Description: "Identity pair policy: touched, all or none",
				},
				"page": {
					Type:        "integer",
					Description: "1-based page number",
				},
				"page_size": {
					Type:        "integer",
					Description: "Pairs per page",
				},
			},
		},
	}, s.handleFindPairs)

	s.server.AddTool(&mcp.Tool{
		Name:        "grid_to_csv",
		Description: "Convert value grid rows into substitution map CSV using the key layout",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"grid": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Value grid rows. Defaults to the built-in value grid.",
				},
			},
		},
	}, s.handleGridToCSV)

	s.server.AddTool(&mcp.Tool{
		Name:        "csv_to_grid",
		Description: "Convert substitution map CSV into value grid rows using the key layout",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"mapping": {
					Type:        "string",
					Description: "Substitution map as CSV lines 'source,destination'",
				},
				"parse_mode": {
					Type:        "string",
					Description: "CSV parse mode: lenient or strict",
				},
			},
			Required: []string{"mapping"},
		},
	}, s.handleCSVToGrid)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_dictionaries",
		Description: "List the dictionaries that can be searched",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"refresh": {
					Type:        "boolean",
					Description: "Rediscover dictionaries instead of using the cached list",
				},
			},
		},
	}, s.handleListDictionaries)
}

// recoverFromPanic runs handler and turns both panics and returned errors
// into IsError tool results.
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Printf("PANIC RECOVERED in %s: %v", operation, r)
			s.diagnosticLogger.Printf("Stack trace: %s", debug.Stack())

			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			s.diagnosticLogger.Printf("Memory stats - Alloc: %d KB, Sys: %d KB, NumGC: %d",
				m.Alloc/1024, m.Sys/1024, m.NumGC)

			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = handler()
	if err != nil {
		s.diagnosticLogger.Printf("Error in %s: %v", operation, err)
		return createSmartErrorResponse(operation, err, nil)
	}
	return result, nil
}

// Start serves MCP over stdio until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport (pid %d)", os.Getpid())
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown releases server resources and closes the diagnostic log.
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("Shutting down MCP server...")
	s.words.Clear()
	s.diagnosticLogger.Printf("MCP server shutdown complete")
	return s.diagnosticLogger.Close()
}
