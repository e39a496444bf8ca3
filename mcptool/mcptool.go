// Package mcptool exposes report extraction as MCP tools.
package mcptool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	labhll "github.com/dsm122n/lab-hll"
	"github.com/dsm122n/lab-hll/catalog"
	"github.com/dsm122n/lab-hll/ocr"
	"github.com/dsm122n/lab-hll/render"
)

// Tool names.
const (
	SummaryTool = "lab_summary"
	TokensTool  = "lab_tokens"
	CatalogTool = "lab_catalog"
)

// Config configures the tools. Zero fields get defaults.
type Config struct {
	Catalog        *catalog.Catalog
	Logger         *slog.Logger
	HTTPClient     *http.Client
	OCR            bool
	OCRLanguage    string
	OCRPageSegMode ocr.PageSegMode
}

// NewServer returns an MCP server with every tool registered.
func NewServer(version string, cfg Config) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "lab-hll", Version: version}, nil)
	Register(srv, cfg)
	return srv
}

// Register adds the tools to srv.
func Register(srv *mcp.Server, cfg Config) {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	t := &tools{cfg: cfg}

	srv.AddTool(&mcp.Tool{
		Name:        SummaryTool,
		Description: "Summarize a lab report PDF as one line per exam section, headed by the sampling date and time.",
		InputSchema: inputSchema(documentProperties(map[string]any{
			"format": map[string]any{
				"type":        "string",
				"enum":        []string{"text", "json"},
				"description": "text (default) or json",
			},
		}), nil),
	}, t.summary)

	srv.AddTool(&mcp.Tool{
		Name:        TokensTool,
		Description: "List the text tokens of each page of a PDF, in reading order, for building exam templates.",
		InputSchema: inputSchema(documentProperties(nil), nil),
	}, t.tokens)

	srv.AddTool(&mcp.Tool{
		Name:        CatalogTool,
		Description: "Return the exam template in use as YAML.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, t.catalog)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func documentProperties(extra map[string]any) map[string]any {
	props := map[string]any{
		"path": map[string]any{"type": "string", "description": "Local PDF path"},
		"url":  map[string]any{"type": "string", "description": "PDF URL, used when path is empty"},
		"pages": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "integer", "minimum": 1},
			"description": "1-based pages to read; all when empty",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// documentArgs are the arguments shared by the document tools.
type documentArgs struct {
	Path   string `json:"path"`
	URL    string `json:"url"`
	Pages  []int  `json:"pages"`
	Format string `json:"format"`
}

type tools struct {
	cfg Config
}

func (t *tools) extractor(ctx context.Context, req *mcp.CallToolRequest) (*labhll.Extractor, documentArgs, error) {
	var args documentArgs
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return nil, args, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	var ext *labhll.Extractor
	switch {
	case args.Path != "":
		ext = labhll.Open(args.Path)
	case args.URL != "":
		ext = labhll.FromURL(args.URL)
		if t.cfg.HTTPClient != nil {
			ext = ext.WithHTTPClient(t.cfg.HTTPClient)
		}
	default:
		return nil, args, errors.New("path or url is required")
	}

	ext = ext.WithContext(ctx).WithCatalog(t.cfg.Catalog).WithLogger(t.cfg.Logger)
	if len(args.Pages) > 0 {
		ext = ext.Pages(args.Pages...)
	}
	if t.cfg.OCR {
		ext = ext.OCR(t.cfg.OCRLanguage).OCRPageSegMode(t.cfg.OCRPageSegMode)
	}
	return ext, args, nil
}

func (t *tools) summary(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ext, args, err := t.extractor(ctx, req)
	if err != nil {
		return errorResult(err), nil
	}

	r, warnings, err := ext.Report()
	if err != nil {
		return errorResult(err), nil
	}

	var res mcp.CallToolResult
	switch args.Format {
	case "", "text":
		res.Content = append(res.Content, &mcp.TextContent{Text: render.Text(r)})
	case "json":
		data, err := json.Marshal(render.JSON(r))
		if err != nil {
			return errorResult(fmt.Errorf("marshal: %w", err)), nil
		}
		res.Content = append(res.Content, &mcp.TextContent{Text: string(data)})
	default:
		return errorResult(fmt.Errorf("unknown format %q", args.Format)), nil
	}

	if len(warnings) > 0 {
		res.Content = append(res.Content, &mcp.TextContent{Text: labhll.FormatWarnings(warnings)})
	}
	return &res, nil
}

func (t *tools) tokens(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ext, _, err := t.extractor(ctx, req)
	if err != nil {
		return errorResult(err), nil
	}

	pages, _, err := ext.Tokens()
	if err != nil {
		return errorResult(err), nil
	}

	data, err := json.Marshal(map[string]any{"pages": pages})
	if err != nil {
		return errorResult(fmt.Errorf("marshal: %w", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func (t *tools) catalog(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := t.cfg.Catalog.WriteYAML(&buf); err != nil {
		return errorResult(err), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: buf.String()}},
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}
