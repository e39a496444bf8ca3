// Command labhll summarizes lab report PDFs.
//
// Usage:
//
//	labhll summary [flags] <file.pdf | url | ->
//	labhll tokens  [flags] <file.pdf | url | ->
//	labhll catalog [flags]
//	labhll serve   [flags]
//	labhll mcp     [flags]
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	labhll "github.com/dsm122n/lab-hll"
	"github.com/dsm122n/lab-hll/catalog"
	"github.com/dsm122n/lab-hll/internal/config"
	"github.com/dsm122n/lab-hll/mcptool"
	"github.com/dsm122n/lab-hll/render"
	"github.com/dsm122n/lab-hll/server"
)

// Version is set at build time.
var Version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

const usage = `usage: labhll <command> [flags] [input]

commands:
  summary   print the report summary of a PDF
  tokens    print the text tokens of each page with their index
  catalog   print the exam catalog as YAML
  serve     run the HTTP server
  mcp       run the MCP server on stdin/stdout

input is a file path, an http(s) URL, or - for standard input.
`

// app carries what every command needs once flags are parsed.
type app struct {
	cfg    *config.Config
	cat    *catalog.Catalog
	logger *slog.Logger
	pages  []int
	format string

	stdin  io.Reader
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, args := args[0], args[1:]
	commands := map[string]func(*app, context.Context, []string) error{
		"summary": (*app).summary,
		"tokens":  (*app).tokens,
		"catalog": (*app).catalog,
		"serve":   (*app).serve,
		"mcp":     (*app).serveMCP,
	}
	fn, ok := commands[cmd]
	if !ok {
		if cmd == "help" || cmd == "-h" || cmd == "-help" {
			fmt.Fprint(stdout, usage)
			return 0
		}
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	fs := flag.NewFlagSet("labhll "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	catalogPath := fs.String("catalog", "", "YAML exam catalog (overrides the configuration)")
	pages := fs.String("pages", "", "pages to read, e.g. 1,3-4 (default all)")
	ocr := fs.Bool("ocr", false, "recognize page images instead of reading the text layer")
	ocrLang := fs.String("ocr-lang", "", "tesseract language (default from configuration)")
	ocrPSM := fs.String("ocr-psm", "", "tesseract page segmentation: auto, single_column, single_block, sparse_text or 1-13")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (overrides the configuration)")
	format := fs.String("format", "text", "summary output: text, json or html")
	addr := fs.String("addr", "", "listen address for serve (overrides the configuration)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	if *catalogPath != "" {
		cfg.Catalog = *catalogPath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *ocr {
		cfg.OCR.Enabled = true
	}
	if *ocrLang != "" {
		cfg.OCR.Language = *ocrLang
	}
	if *ocrPSM != "" {
		cfg.OCR.PageSegMode = *ocrPSM
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := cfg.Logger(stderr)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger, format: *format, stdin: stdin, stdout: stdout}

	var err error
	if a.pages, err = parsePages(*pages); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if a.cat, err = cfg.LoadCatalog(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := fn(a, ctx, fs.Args()); err != nil {
		logger.Error(cmd+" failed", "error", err)
		return 1
	}
	return 0
}

func (a *app) summary(ctx context.Context, args []string) error {
	ext, err := a.extractor(ctx, args)
	if err != nil {
		return err
	}

	r, warnings, err := ext.Report()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		a.logger.Warn(w.Message, "code", w.Code.String(), "page", w.Page)
	}

	switch a.format {
	case "text":
		_, err = fmt.Fprintln(a.stdout, render.Text(r))
	case "json":
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(render.JSON(r))
	case "html":
		err = render.HTML(a.stdout, render.Text(r))
	default:
		err = fmt.Errorf("unknown format %q", a.format)
	}
	return err
}

func (a *app) tokens(ctx context.Context, args []string) error {
	ext, err := a.extractor(ctx, args)
	if err != nil {
		return err
	}

	pages, warnings, err := ext.Tokens()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		a.logger.Warn(w.Message, "code", w.Code.String(), "page", w.Page)
	}

	for i, page := range pages {
		n := i + 1
		if len(a.pages) > 0 {
			n = a.pages[i]
		}
		fmt.Fprintf(a.stdout, "# page %d (index %d)\n", n, n-1)
		for j, tok := range page {
			fmt.Fprintf(a.stdout, "%d\t%q\n", j, tok)
		}
	}
	return nil
}

func (a *app) catalog(context.Context, []string) error {
	return a.cat.WriteYAML(a.stdout)
}

func (a *app) serve(ctx context.Context, _ []string) error {
	h := server.New(server.Config{
		Catalog:        a.cat,
		Logger:         a.logger,
		HTTPClient:     &http.Client{Timeout: a.cfg.Fetch.Timeout},
		MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
		FetchTimeout:   a.cfg.Fetch.Timeout,
		OCR:            a.cfg.OCR.Enabled,
		OCRLanguage:    a.cfg.OCR.Language,
		OCRPageSegMode: a.cfg.PageSegMode(),
	}).Handler()

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      h,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) serveMCP(ctx context.Context, _ []string) error {
	srv := mcptool.NewServer(Version, mcptool.Config{
		Catalog:        a.cat,
		Logger:         a.logger,
		HTTPClient:     &http.Client{Timeout: a.cfg.Fetch.Timeout},
		OCR:            a.cfg.OCR.Enabled,
		OCRLanguage:    a.cfg.OCR.Language,
		OCRPageSegMode: a.cfg.PageSegMode(),
	})
	return srv.Run(ctx, &mcp.StdioTransport{})
}

// extractor builds the pipeline for the single input argument.
func (a *app) extractor(ctx context.Context, args []string) (*labhll.Extractor, error) {
	if len(args) != 1 {
		return nil, errors.New("expected exactly one input")
	}
	in := args[0]

	var ext *labhll.Extractor
	switch {
	case in == "-":
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		ext = labhll.FromReader(bytes.NewReader(data))
	case strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://"):
		ext = labhll.FromURL(in).WithHTTPClient(&http.Client{Timeout: a.cfg.Fetch.Timeout})
	default:
		ext = labhll.Open(in)
	}

	ext = ext.WithContext(ctx).WithCatalog(a.cat).WithLogger(a.logger)
	if len(a.pages) > 0 {
		ext = ext.Pages(a.pages...)
	}
	if a.cfg.OCR.Enabled {
		ext = ext.OCR(a.cfg.OCR.Language).OCRPageSegMode(a.cfg.PageSegMode())
	}
	return ext, nil
}

// parsePages parses a 1-based page list such as "1,3-5". The result is
// sorted with duplicates removed.
func parsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")

		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 1 {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || end < start {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
	}
	slices.Sort(pages)
	return slices.Compact(pages), nil
}
