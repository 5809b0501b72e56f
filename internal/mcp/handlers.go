package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/wordshift/internal/dictionary"
	wserrors "github.com/standardbeagle/wordshift/internal/errors"
	"github.com/standardbeagle/wordshift/internal/grid"
	"github.com/standardbeagle/wordshift/internal/mapping"
	"github.com/standardbeagle/wordshift/internal/paging"
	"github.com/standardbeagle/wordshift/internal/search"
	"github.com/standardbeagle/wordshift/internal/session"
	"github.com/standardbeagle/wordshift/internal/store"
	"github.com/standardbeagle/wordshift/internal/version"
)

// Where the map used by find_pairs came from.
const (
	mappingFromCSV     = "csv"
	mappingFromGrid    = "grid"
	mappingFromFile    = "file"
	mappingFromState   = "state"
	mappingFromDefault = "default"
)

type InfoParams struct {
	Tool string `json:"tool"`
}

type FindPairsParams struct {
	Dictionary    string   `json:"dictionary"`
	Mapping       string   `json:"mapping"`
	Grid          []string `json:"grid"`
	ParseMode     string   `json:"parse_mode"`
	IdentityPairs string   `json:"identity_pairs"`
	Page          int      `json:"page"`
	PageSize      int      `json:"page_size"`
}

type FindPairsResponse struct {
	Dictionary     string                     `json:"dictionary"`
	Words          int                        `json:"words"`
	MappingSource  string                     `json:"mapping_source"`
	MappingEntries int                        `json:"mapping_entries"`
	IdentityPairs  string                     `json:"identity_pairs"`
	Result         paging.Result[search.Pair] `json:"result"`
}

type GridToCSVParams struct {
	Grid []string `json:"grid"`
}

type CSVToGridParams struct {
	Mapping   string `json:"mapping"`
	ParseMode string `json:"parse_mode"`
}

type ConversionResponse struct {
	CSV     string   `json:"csv"`
	Grid    []string `json:"grid"`
	Entries int      `json:"entries"`
	Skipped int      `json:"skipped,omitempty"`
}

type ListDictionariesParams struct {
	Refresh bool `json:"refresh"`
}

type ListDictionariesResponse struct {
	Dictionaries []dictionary.Entry `json:"dictionaries"`
	Default      string             `json:"default,omitempty"`
}

// decodeParams unmarshals tool arguments; empty arguments leave v unchanged.
func decodeParams(req *mcp.CallToolRequest, v interface{}) error {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InfoParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("info", err)
	}

	switch tool := strings.ToLower(strings.TrimSpace(params.Tool)); tool {
	case "version":
		return createJSONResponse(map[string]interface{}{
			"server_name":    "wordshift-mcp-server",
			"server_version": version.FullInfo(),
			"go_version":     runtime.Version(),
			"platform":       runtime.GOOS + "/" + runtime.GOARCH,
		})
	case "":
		return createJSONResponse(map[string]interface{}{
			"description": "Finds dictionary words that turn into other dictionary words under a character substitution map",
			"tools":       []string{"find_pairs", "grid_to_csv", "csv_to_grid", "list_dictionaries"},
			"grid":        fmt.Sprintf("%d rows x %d columns, %s marks a blocked cell", grid.Rows, grid.Cols, grid.BlockMarker),
		})
	default:
		help := getOperationHelp(tool)
		if help == "" {
			return createErrorResponse("info", fmt.Errorf("unknown tool: %s", params.Tool))
		}
		return createJSONResponse(map[string]interface{}{
			"name":  tool,
			"usage": help,
		})
	}
}

func (s *Server) handleFindPairs(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("find_pairs", func() (*mcp.CallToolResult, error) {
		var params FindPairsParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}

		mode := s.cfg.ParseMode()
		if params.ParseMode != "" {
			m, err := mapping.ParseModeFromString(params.ParseMode)
			if err != nil {
				return nil, err
			}
			mode = m
		}

		opts := s.cfg.SearchOptions()
		if params.IdentityPairs != "" {
			policy, err := search.ParseIdentityPolicy(params.IdentityPairs)
			if err != nil {
				return nil, err
			}
			opts.IdentityPairs = policy
		}

		sess := session.New(s.layout)
		source, warnings, err := s.applyMapping(ctx, sess, params, mode)
		if err != nil {
			return nil, err
		}

		name := params.Dictionary
		if name == "" {
			name = s.cfg.Dictionaries.Default
		}
		catalog, err := s.dictionaries(ctx, false)
		if err != nil {
			return nil, err
		}
		src, err := catalog.Resolve(name)
		if err != nil {
			return nil, err
		}
		words, err := s.words.GetOrLoad(ctx, src)
		if err != nil {
			return nil, err
		}

		if _, err := sess.Search(ctx, words, opts); err != nil {
			return nil, wserrors.NewSearchError(src.Name(), err)
		}
		pageSize := params.PageSize
		if pageSize <= 0 {
			pageSize = s.cfg.Search.PageSize
		}
		sess.SetPageSize(pageSize)

		resp := FindPairsResponse{
			Dictionary:     src.Name(),
			Words:          words.Len(),
			MappingSource:  source,
			MappingEntries: sess.Mapping().Len(),
			IdentityPairs:  opts.IdentityPairs.String(),
			Result:         sess.GoTo(params.Page),
		}
		return createResponseWithWarnings(resp, warnings)
	})
}

// applyMapping loads the map for a find_pairs call: explicit CSV, then
// explicit grid, then the configured mapping file, then the saved state,
// then the built-in grids.
func (s *Server) applyMapping(ctx context.Context, sess *session.Session, params FindPairsParams, mode mapping.ParseMode) (string, []string, error) {
	switch {
	case strings.TrimSpace(params.Mapping) != "":
		report, err := sess.ApplyCSV(params.Mapping, mode)
		if err != nil {
			return "", nil, err
		}
		return mappingFromCSV, skippedWarnings(report), nil

	case len(params.Grid) > 0:
		if err := sess.ApplyGrid(params.Grid); err != nil {
			return "", nil, err
		}
		return mappingFromGrid, nil, nil

	case s.cfg.Mapping.File != "":
		report, err := sess.ApplySource(ctx, dictionary.Open(s.cfg.Mapping.File), mode)
		if err != nil {
			return "", nil, err
		}
		return mappingFromFile, skippedWarnings(report), nil
	}

	if s.cfg.State.File != "" {
		st, err := store.Open(s.cfg.State.File)
		if err != nil {
			s.diagnosticLogger.Printf("Ignoring unreadable state file %s: %v", s.cfg.State.File, err)
		} else if ok, err := sess.Restore(st); err != nil {
			s.diagnosticLogger.Printf("Ignoring saved mapping: %v", err)
		} else if ok {
			return mappingFromState, nil, nil
		}
	}

	sess.SetMapping(grid.ToMapping(s.layout, grid.DefaultValueGrid()))
	return mappingFromDefault, nil, nil
}

func skippedWarnings(report mapping.ParseReport) []string {
	if report.Skipped == 0 {
		return nil
	}
	return []string{fmt.Sprintf("skipped %d of %d mapping lines", report.Skipped, report.Lines)}
}

func (s *Server) handleGridToCSV(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("grid_to_csv", func() (*mcp.CallToolResult, error) {
		var params GridToCSVParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}

		sess := session.New(s.layout)
		if len(params.Grid) > 0 {
			if err := sess.ApplyGrid(params.Grid); err != nil {
				return nil, err
			}
		} else {
			sess.SetMapping(grid.ToMapping(s.layout, grid.DefaultValueGrid()))
		}

		v := sess.ValueGrid()
		return createJSONResponse(ConversionResponse{
			CSV:     sess.CSV(),
			Grid:    v.Lines(),
			Entries: sess.Mapping().Len(),
		})
	})
}

func (s *Server) handleCSVToGrid(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("csv_to_grid", func() (*mcp.CallToolResult, error) {
		var params CSVToGridParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		if strings.TrimSpace(params.Mapping) == "" {
			return nil, fmt.Errorf("mapping is required")
		}

		mode, err := mapping.ParseModeFromString(params.ParseMode)
		if err != nil {
			return nil, err
		}

		sess := session.New(s.layout)
		report, err := sess.ApplyCSV(params.Mapping, mode)
		if err != nil {
			return nil, err
		}

		v := sess.ValueGrid()
		return createResponseWithWarnings(ConversionResponse{
			CSV:     sess.CSV(),
			Grid:    v.Lines(),
			Entries: sess.Mapping().Len(),
			Skipped: report.Skipped,
		}, skippedWarnings(report))
	})
}

func (s *Server) handleListDictionaries(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("list_dictionaries", func() (*mcp.CallToolResult, error) {
		var params ListDictionariesParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}

		catalog, err := s.dictionaries(ctx, params.Refresh)
		if err != nil {
			return nil, err
		}
		if params.Refresh {
			s.words.Clear()
		}

		return createJSONResponse(ListDictionariesResponse{
			Dictionaries: catalog.Entries(),
			Default:      s.cfg.Dictionaries.Default,
		})
	})
}
