package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/waftester/a11ycorpus/pkg/defaults"
	"github.com/waftester/a11ycorpus/pkg/fixture"
	"github.com/waftester/a11ycorpus/pkg/ui"
)

type listCommand struct {
	Fixtures string `short:"f" long:"fixtures" description:"fixture corpus directory"`
}

func (c *listCommand) run(_ context.Context, e *env) int {
	override(&e.cfg.Fixtures, c.Fixtures)
	store := fixture.NewStore(e.cfg.Fixtures)

	entries, err := store.List()
	if err != nil {
		e.logger.Error("list fixtures", slog.Any("error", err))
		return defaults.ExitInternalError
	}

	category := ""
	for _, entry := range entries {
		if entry.Category != category {
			category = entry.Category
			fmt.Fprintln(e.stdout, ui.CategoryStyle.Render(category))
		}
		title, err := store.Title(entry.Category, entry.ID)
		if err != nil {
			e.logger.Warn("read title", slog.String("fixture", entry.ID), slog.Any("error", err))
		}
		fmt.Fprintf(e.stdout, "  %-60s %s\n", entry.ID, title)
	}
	fmt.Fprintf(e.stdout, "%d fixtures\n", len(entries))
	return defaults.ExitSuccess
}
