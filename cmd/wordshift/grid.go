package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/wordshift/internal/grid"
	"github.com/standardbeagle/wordshift/internal/session"
)

func gridShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	sess, source, err := loadSession(c, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "mapping: %s\n", source)
	writeOutput(c.App.Writer, newFormatter(cfg).FormatGrid(sess.Layout(), sess.ValueGrid()))
	return nil
}

func gridToCSVCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	_, text, err := readInput(c, cfg)
	if err != nil {
		return err
	}

	sess := session.New(grid.DefaultLayout())
	if err := sess.ApplyGrid(strings.Split(text, "\n")); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, sess.CSV())

	if c.Bool("save") {
		return saveSession(c, cfg, sess)
	}
	return nil
}

func gridFromCSVCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	mode, err := parseModeFlag(c, cfg)
	if err != nil {
		return err
	}

	_, text, err := readInput(c, cfg)
	if err != nil {
		return err
	}

	sess := session.New(grid.DefaultLayout())
	report, err := sess.ApplyCSV(text, mode)
	if err != nil {
		return err
	}
	if report.Skipped > 0 {
		fmt.Fprintf(c.App.ErrWriter, "skipped %d of %d mapping lines\n", report.Skipped, report.Lines)
	}

	v := sess.ValueGrid()
	fmt.Fprintln(c.App.Writer, v.String())

	if c.Bool("save") {
		return saveSession(c, cfg, sess)
	}
	return nil
}
