package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/wordshift/internal/config"
	"github.com/standardbeagle/wordshift/internal/debug"
	"github.com/standardbeagle/wordshift/internal/dictionary"
	"github.com/standardbeagle/wordshift/internal/display"
	"github.com/standardbeagle/wordshift/internal/mcp"
	"github.com/standardbeagle/wordshift/internal/version"
)

var Version = version.Version

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	cfg, err := config.LoadWithRoot(configPath, c.String("root"))
	if err != nil {
		if configPath == "" {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if dirs := c.StringSlice("dict-dir"); len(dirs) > 0 {
		for _, d := range dirs {
			cfg.Dictionaries.Dirs = append(cfg.Dictionaries.Dirs, cfg.ResolvePath(d))
		}
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("styled") {
		cfg.Output.Styled = c.Bool("styled")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFormatter(cfg *config.Config) *display.Formatter {
	return display.NewFormatter(display.FormatterOptions{
		Format: cfg.Output.Format,
		Styled: cfg.Output.Styled,
	})
}

// writeOutput writes s and ends it with exactly one newline.
func writeOutput(w io.Writer, s string) {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	io.WriteString(w, s)
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "wordshift",
		Usage:                  "Find dictionary words that become other words under a character substitution",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: ~/.wordshift.kdl then ./.wordshift.kdl)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides the current directory)",
			},
			&cli.StringSliceFlag{
				Name:  "dict-dir",
				Usage: "Additional dictionary directory (repeatable)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json or csv",
			},
			&cli.BoolFlag{
				Name:  "styled",
				Usage: "Colour text output",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logs to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Find word pairs in a dictionary",
				ArgsUsage: "[dictionary]",
				Flags:     searchFlags(),
				Action:    searchCommand,
			},
			{
				Name:  "grid",
				Usage: "Convert between the value grid and CSV mapping",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Show the key layout and the current value grid",
						Flags:  mappingFlags(),
						Action: gridShowCommand,
					},
					{
						Name:      "to-csv",
						Usage:     "Convert value grid lines to CSV",
						ArgsUsage: "[grid-file|-]",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "save", Usage: "Save the result as the current mapping"},
						},
						Action: gridToCSVCommand,
					},
					{
						Name:      "from-csv",
						Usage:     "Convert CSV mapping to value grid lines",
						ArgsUsage: "[csv-file|-]",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "mode", Usage: "CSV parse mode: lenient or strict"},
							&cli.BoolFlag{Name: "strict", Usage: "Reject malformed CSV lines"},
							&cli.BoolFlag{Name: "save", Usage: "Save the result as the current mapping"},
						},
						Action: gridFromCSVCommand,
					},
				},
			},
			{
				Name:    "dicts",
				Aliases: []string{"ls"},
				Usage:   "List available dictionaries",
				Action:  dictsCommand,
			},
			{
				Name:      "watch",
				Aliases:   []string{"w"},
				Usage:     "Re-run the search when the dictionary or mapping changes",
				ArgsUsage: "[dictionary]",
				Flags:     searchFlags(),
				Action:    watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: mcpCommand,
			},
			{
				Name:  "config",
				Usage: "Inspect configuration",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the effective configuration as TOML",
						Action: configShowCommand,
					},
					{
						Name:   "validate",
						Usage:  "Validate the configuration",
						Action: configValidateCommand,
					},
				},
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.FullInfo())
					return nil
				},
			},
		},
		Action: func(c *cli.Context) error {
			// Default to search if a dictionary is named
			if c.NArg() > 0 {
				return searchCommand(c)
			}
			return cli.ShowAppHelp(c)
		},
	}
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dictsCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	catalog, err := dictionary.Discover(c.Context, cfg.DiscoverOptions())
	if err != nil {
		return err
	}
	writeOutput(c.App.Writer, newFormatter(cfg).FormatDictionaries(catalog.Entries()))
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = c.App.Writer.Write(out)
	return err
}

func configValidateCommand(c *cli.Context) error {
	if _, err := loadConfigWithOverrides(c); err != nil {
		return err
	}
	fmt.Fprintln(c.App.ErrWriter, "configuration is valid")
	return nil
}

func mcpCommand(c *cli.Context) error {
	// stdout carries the protocol
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	logger := mcp.NewDiagnosticLogger(true)
	mcpServer, err := mcp.NewServer(cfg, logger)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		debug.LogMCP("Starting MCP server with stdio transport...\n")
		errChan <- mcpServer.Start(ctx)
	}()

	select {
	case err := <-errChan:
		mcpServer.Shutdown(context.Background())
		if err != nil {
			return debug.Fatal("MCP server error: %v\n", err)
		}
		return nil
	case sig := <-sigChan:
		debug.LogMCP("Received signal %v, shutting down gracefully...\n", sig)
		cancel()

		shutdownTimer := time.NewTimer(2 * time.Second)
		defer shutdownTimer.Stop()

		select {
		case <-errChan:
			debug.LogMCP("Server shutdown completed\n")
		case <-shutdownTimer.C:
			debug.LogMCP("Server shutdown timed out\n")
		}
		return mcpServer.Shutdown(context.Background())
	}
}

// readInput reads a file argument through the dictionary sources, so a
// byte-order mark is honoured, or stdin when the argument is "-" or absent.
func readInput(c *cli.Context, cfg *config.Config) (string, string, error) {
	arg := c.Args().First()
	if arg == "" || arg == "-" {
		reader := c.App.Reader
		if reader == nil {
			reader = os.Stdin
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return "stdin", string(data), nil
	}

	src := dictionary.Open(cfg.ResolvePath(arg))
	text, err := src.Fetch(c.Context)
	if err != nil {
		return "", "", err
	}
	return src.Name(), text, nil
}
