package cui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jroimartin/gocui"

	"blsearch/internal/domain/models"
	"blsearch/internal/lib/logger/sl"
	"blsearch/internal/services/query"
	"blsearch/internal/utils"
)

// CUI is the interactive browser over the broken-links table: a search
// input on top, paginated results below.
type CUI struct {
	ctx         context.Context
	cui         *gocui.Gui
	engine      *query.Engine
	table       *models.Table
	log         *slog.Logger
	pageSize    int
	currentPage int
	results     *models.Table
	lastQuery   string
	lastElapsed time.Duration
}

func New(ctx context.Context, log *slog.Logger, engine *query.Engine, table *models.Table, pageSize int) *CUI {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Error("Failed to create GUI:", "error", sl.Err(err))
		os.Exit(1)
	}
	return &CUI{
		ctx:      ctx,
		cui:      g,
		engine:   engine,
		table:    table,
		log:      log,
		pageSize: pageSize,
		results:  table,
	}
}

func (c *CUI) Close() {
	c.cui.Close()
}

func (c *CUI) Start() error {
	c.cui.Cursor = true
	c.cui.SetManagerFunc(c.layout)
	defer c.cui.Close()

	if err := c.cui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		c.log.Error("Failed to set keybinding:", "error", sl.Err(err))
	}
	if err := c.cui.SetKeybinding("input", gocui.KeyEnter, gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
		c.lastQuery = strings.TrimSpace(v.Buffer())
		c.currentPage = 0
		return c.search(g)
	}); err != nil {
		c.log.Error("Failed to set keybinding:", "error", sl.Err(err))
	}
	if err := c.cui.SetKeybinding("output", gocui.KeyArrowRight, gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
		return c.turnPage(g, 1)
	}); err != nil {
		c.log.Error("Failed to set keybinding:", "error", sl.Err(err))
	}
	if err := c.cui.SetKeybinding("output", gocui.KeyArrowLeft, gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
		return c.turnPage(g, -1)
	}); err != nil {
		c.log.Error("Failed to set keybinding:", "error", sl.Err(err))
	}
	if err := c.cui.SetKeybinding("output", gocui.KeyArrowDown, gocui.ModNone, scrollDown); err != nil {
		c.log.Error("Failed to set keybinding:", "error", sl.Err(err))
	}
	if err := c.cui.SetKeybinding("output", gocui.KeyArrowUp, gocui.ModNone, scrollUp); err != nil {
		c.log.Error("Failed to set keybinding:", "error", sl.Err(err))
	}
	if err := c.cui.SetKeybinding("", gocui.KeyTab, gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
		if g.CurrentView().Name() == "input" {
			_, _ = g.SetCurrentView("output")
		} else {
			_, _ = g.SetCurrentView("input")
		}
		return nil
	}); err != nil {
		c.log.Error("Failed to set keybinding:", "error", sl.Err(err))
	}

	if err := c.cui.MainLoop(); err != nil && err != gocui.ErrQuit {
		c.log.Error("Failed to run GUI:", "error", sl.Err(err))
	}

	return nil
}

func (c *CUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if maxX < 10 || maxY < 6 {
		return fmt.Errorf("terminal window is too small")
	}

	if v, err := g.SetView("input", 2, 2, maxX-2, 4); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Editable = true
		v.Title = "Search (field:value, and/or/not, * wildcards)"
		v.Wrap = true
		_, _ = g.SetCurrentView("input")
	}

	if v, err := g.SetView("output", 2, 5, maxX-2, maxY-2); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "Results"
		v.Wrap = true
		_ = c.renderPage(v)
	}

	return nil
}

func (c *CUI) search(g *gocui.Gui) error {
	select {
	case <-c.ctx.Done():
		return gocui.ErrQuit
	default:
	}

	start := time.Now()
	c.results = c.engine.Evaluate(c.table, c.lastQuery)
	c.lastElapsed = time.Since(start)

	outputView, err := g.View("output")
	if err != nil {
		return err
	}
	if err := c.renderPage(outputView); err != nil {
		return err
	}

	_, _ = g.SetCurrentView("input")
	return nil
}

func (c *CUI) turnPage(g *gocui.Gui, delta int) error {
	next := c.currentPage + delta
	if next < 0 || next >= c.pageCount() {
		return nil
	}
	c.currentPage = next

	outputView, err := g.View("output")
	if err != nil {
		return err
	}
	return c.renderPage(outputView)
}

func (c *CUI) pageCount() int {
	n := (c.results.Len() + c.pageSize - 1) / c.pageSize
	if n == 0 {
		n = 1
	}
	return n
}

func (c *CUI) renderPage(v *gocui.View) error {
	v.Clear()
	if err := v.SetOrigin(0, 0); err != nil {
		return err
	}

	fmt.Fprintf(v, "\033[33mFound %d results\033[0m", c.results.Len())
	if c.lastElapsed > 0 {
		fmt.Fprintf(v, " \033[32m(%s)\033[0m", utils.FormatDuration(c.lastElapsed))
	}
	fmt.Fprint(v, "\n\n")

	start := c.currentPage * c.pageSize
	end := start + c.pageSize
	if end > c.results.Len() {
		end = c.results.Len()
	}

	for _, rec := range c.results.Records[start:end] {
		fmt.Fprintf(v, "\033[32m%s\033[0m\n", headline(rec))
		if rec.Abstract != "" {
			fmt.Fprintf(v, "%s\n", rec.Abstract)
		}
		if len(rec.Keywords) > 0 {
			fmt.Fprintf(v, "Keywords: %s\n", strings.Join(rec.Keywords, ", "))
		}
		fmt.Fprintf(v, "Collection: %s\n", rec.Collection)
		fmt.Fprintf(v, "Broken link: %s\n", rec.URL)
		fmt.Fprintf(v, "ADS: https://ui.adsabs.harvard.edu/abs/%s\n", rec.Bibcode)
		if rec.HasPDF {
			fmt.Fprintln(v, "PDF: available")
		}
		fmt.Fprintln(v)
	}

	fmt.Fprintf(v, "\nPage %d of %d (left/right arrows to turn)\n", c.currentPage+1, c.pageCount())
	return nil
}

// headline is the collapsed one-line form of a record: title, authors
// and publication date.
func headline(rec models.Record) string {
	authors := "No authors available"
	if len(rec.Authors) > 0 {
		authors = strings.Join(rec.Authors, ", ")
	}
	pubdate := rec.PubDate
	if pubdate == "" {
		pubdate = "No date available"
	}
	return fmt.Sprintf("%s | %s | %s", rec.Title, authors, pubdate)
}

func scrollDown(g *gocui.Gui, v *gocui.View) error {
	_, oy := v.Origin()
	_, sy := v.Size()

	lines := len(v.BufferLines())

	if oy+sy < lines {
		_ = v.SetOrigin(0, oy+1)
	}
	return nil
}

func scrollUp(g *gocui.Gui, v *gocui.View) error {
	_, oy := v.Origin()
	if oy > 0 {
		_ = v.SetOrigin(0, oy-1)
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
