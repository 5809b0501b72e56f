package mcp

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/wordshift/internal/config"
	"github.com/standardbeagle/wordshift/internal/grid"
	"github.com/standardbeagle/wordshift/internal/mapping"
	"github.com/standardbeagle/wordshift/internal/search"
	"github.com/standardbeagle/wordshift/internal/session"
	"github.com/standardbeagle/wordshift/internal/store"
	"github.com/standardbeagle/wordshift/testhelpers"
)

func newTestServer(t *testing.T, words string) (*Server, *config.Config) {
	t.Helper()
	cfg := testhelpers.NewTestProjectBuilder(t).
		WithDictionary("kobuta.txt", words).
		WithDefault("kobuta").
		Build()

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)
	return s, cfg
}

type pairsResult struct {
	Dictionary     string `json:"dictionary"`
	Words          int    `json:"words"`
	MappingSource  string `json:"mapping_source"`
	MappingEntries int    `json:"mapping_entries"`
	IdentityPairs  string `json:"identity_pairs"`
	Result         struct {
		Items      []search.Pair `json:"items"`
		Page       int           `json:"page"`
		TotalPages int           `json:"total_pages"`
		TotalItems int           `json:"total_items"`
	} `json:"result"`
	Warnings []string `json:"warnings"`
}

func decodePairs(t *testing.T, text string) pairsResult {
	t.Helper()
	var res pairsResult
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	return res
}

func TestNewServer_RequiresConfig(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.Error(t, err)
}

func TestFindPairs_CSVMapping(t *testing.T) {
	s, _ := newTestServer(t, "ねこ\nこね\nいぬ\n")

	text, err := s.CallTool("find_pairs", map[string]interface{}{
		"mapping": "ね,こ\nこ,ね",
	})
	require.NoError(t, err)

	res := decodePairs(t, text)
	assert.Equal(t, "kobuta.txt", res.Dictionary)
	assert.Equal(t, 3, res.Words)
	assert.Equal(t, "csv", res.MappingSource)
	assert.Equal(t, 2, res.MappingEntries)
	assert.Equal(t, "touched", res.IdentityPairs)
	assert.Equal(t, []search.Pair{
		{Source: "ねこ", Derived: "こね"},
		{Source: "こね", Derived: "ねこ"},
	}, res.Result.Items)
	assert.Equal(t, 1, res.Result.TotalPages)
}

func TestFindPairs_IdentityPolicy(t *testing.T) {
	s, _ := newTestServer(t, "ねこ\nいぬ\n")

	text, err := s.CallTool("find_pairs", map[string]interface{}{
		"mapping":        "ね,ね",
		"identity_pairs": "all",
	})
	require.NoError(t, err)

	res := decodePairs(t, text)
	assert.Equal(t, "all", res.IdentityPairs)
	assert.Len(t, res.Result.Items, 2)
}

func TestFindPairs_DefaultGrid(t *testing.T) {
	s, _ := newTestServer(t, "あい\nいう\nん\n")

	text, err := s.CallTool("find_pairs", map[string]interface{}{})
	require.NoError(t, err)

	res := decodePairs(t, text)
	assert.Equal(t, "default", res.MappingSource)
	assert.Equal(t, 67, res.MappingEntries)
	assert.Equal(t, []search.Pair{{Source: "あい", Derived: "いう"}}, res.Result.Items)
}

func TestFindPairs_SavedState(t *testing.T) {
	s, cfg := newTestServer(t, "ねこ\nこね\n")

	st, err := store.Open(cfg.State.File)
	require.NoError(t, err)
	sess := session.New(grid.DefaultLayout())
	_, err = sess.ApplyCSV("ね,こ\nこ,ね", mapping.Lenient)
	require.NoError(t, err)
	require.NoError(t, sess.Save(st))

	text, err := s.CallTool("find_pairs", map[string]interface{}{})
	require.NoError(t, err)

	res := decodePairs(t, text)
	assert.Equal(t, "state", res.MappingSource)
	assert.Len(t, res.Result.Items, 2)
}

func TestFindPairs_Paging(t *testing.T) {
	s, _ := newTestServer(t, "ねこ\nこね\nねねこ\nここね\n")

	text, err := s.CallTool("find_pairs", map[string]interface{}{
		"mapping":   "ね,こ\nこ,ね",
		"page_size": 1,
		"page":      99,
	})
	require.NoError(t, err)

	res := decodePairs(t, text)
	assert.Equal(t, 4, res.Result.TotalItems)
	assert.Equal(t, 4, res.Result.TotalPages)
	assert.Equal(t, 4, res.Result.Page)
	require.Len(t, res.Result.Items, 1)
	assert.Equal(t, "こね", res.Result.Items[0].Source)
}

func TestFindPairs_LenientWarnings(t *testing.T) {
	s, _ := newTestServer(t, "ねこ\nこね\n")

	text, err := s.CallTool("find_pairs", map[string]interface{}{
		"mapping": "ね,こ\nbroken\nこ,ね",
	})
	require.NoError(t, err)

	res := decodePairs(t, text)
	assert.Equal(t, []string{"skipped 1 of 3 mapping lines"}, res.Warnings)
}

func TestFindPairs_Errors(t *testing.T) {
	s, cfg := newTestServer(t, "ねこ\n")

	t.Run("strict parse", func(t *testing.T) {
		text, err := s.CallTool("find_pairs", map[string]interface{}{
			"mapping":    "ね,こ\nbroken",
			"parse_mode": "strict",
		})
		require.Error(t, err)
		assert.Contains(t, text, `"line_errors"`)
		assert.Contains(t, text, `"line":2`)
	})

	t.Run("unknown dictionary", func(t *testing.T) {
		text, err := s.CallTool("find_pairs", map[string]interface{}{
			"dictionary": "nothing-like-it",
		})
		require.Error(t, err)
		assert.Contains(t, text, "source_not_found")
	})

	t.Run("no dictionary", func(t *testing.T) {
		cfg.Dictionaries.Default = ""
		defer func() { cfg.Dictionaries.Default = "kobuta" }()

		text, err := s.CallTool("find_pairs", map[string]interface{}{})
		require.Error(t, err)
		assert.Contains(t, text, "list_dictionaries")
	})

	t.Run("bad identity policy", func(t *testing.T) {
		_, err := s.CallTool("find_pairs", map[string]interface{}{
			"identity_pairs": "sometimes",
		})
		assert.Error(t, err)
	})

	t.Run("grid too tall", func(t *testing.T) {
		_, err := s.CallTool("find_pairs", map[string]interface{}{
			"grid": []string{"a", "b", "c", "d", "e", "f"},
		})
		assert.Error(t, err)
	})
}

func TestGridToCSV(t *testing.T) {
	s, _ := newTestServer(t, "")

	text, err := s.CallTool("grid_to_csv", map[string]interface{}{})
	require.NoError(t, err)

	var res ConversionResponse
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.Equal(t, 67, res.Entries)
	assert.Len(t, res.Grid, grid.Rows)
	assert.Contains(t, res.CSV, "あ,い\n")
}

func TestCSVToGrid(t *testing.T) {
	s, _ := newTestServer(t, "")

	text, err := s.CallTool("csv_to_grid", map[string]interface{}{
		"mapping": "あ,か\n\nbroken",
	})
	require.NoError(t, err)

	var res ConversionResponse
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.Equal(t, 1, res.Entries)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "あ,か", res.CSV)
	assert.Len(t, res.Grid, grid.Rows)
	assert.Contains(t, res.Grid[0]+res.Grid[1]+res.Grid[2]+res.Grid[3]+res.Grid[4], "か")

	_, err = s.CallTool("csv_to_grid", map[string]interface{}{"mapping": " "})
	assert.Error(t, err)
}

func TestListDictionaries(t *testing.T) {
	s, cfg := newTestServer(t, "ねこ\n")

	text, err := s.CallTool("list_dictionaries", map[string]interface{}{})
	require.NoError(t, err)

	var res ListDictionariesResponse
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	require.Len(t, res.Dictionaries, 1)
	assert.Equal(t, "kobuta.txt", res.Dictionaries[0].Name)
	assert.Equal(t, "kobuta", res.Default)

	// New files appear only after a refresh
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Dictionaries.Dirs[0], "ippan.txt"), []byte("いぬ\n"), 0644))

	text, err = s.CallTool("list_dictionaries", map[string]interface{}{})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.Len(t, res.Dictionaries, 1)

	text, err = s.CallTool("list_dictionaries", map[string]interface{}{"refresh": true})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.Len(t, res.Dictionaries, 2)
}

func TestInfo(t *testing.T) {
	s, _ := newTestServer(t, "")

	text, err := s.CallTool("info", map[string]interface{}{})
	require.NoError(t, err)
	assert.Contains(t, text, "find_pairs")

	text, err = s.CallTool("info", map[string]interface{}{"tool": "version"})
	require.NoError(t, err)
	assert.Contains(t, text, "wordshift")

	_, err = s.CallTool("info", map[string]interface{}{"tool": "nope"})
	assert.Error(t, err)
}

func TestDiagnosticLogger(t *testing.T) {
	var buf bytes.Buffer
	dl := NewWriterLogger(&buf)
	dl.Printf("hello %d", 1)
	dl.Errorf("bad %s", "thing")
	assert.Contains(t, buf.String(), "hello 1")
	assert.Contains(t, buf.String(), "ERROR: bad thing")
	assert.NoError(t, dl.Close())

	var nilLogger *DiagnosticLogger
	nilLogger.Printf("ignored")
	assert.Empty(t, nilLogger.GetLogPath())
}
