package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dsm122n/lab-hll/internal/pdftest"
	"github.com/dsm122n/lab-hll/render"
)

var testImpl = &mcp.Implementation{Name: "lab-hll-test", Version: "0.1.0"}

func session(t *testing.T) *mcp.ClientSession {
	t.Helper()
	srv := NewServer("test", Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	cs, err := mcp.NewClient(testImpl, nil).Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func text(t *testing.T, res *mcp.CallToolResult, i int) string {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool error: %+v", res.Content)
	}
	if len(res.Content) <= i {
		t.Fatalf("got %d content items, want more than %d", len(res.Content), i)
	}
	tc, ok := res.Content[i].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content %d is %T, want TextContent", i, res.Content[i])
	}
	return tc.Text
}

// writeReport writes a two-page report and returns its path. The second page
// carries a sentinel in CLORO's value slot.
func writeReport(t *testing.T) string {
	t.Helper()
	first := make([]string, 0, 20)
	for i := 0; i < 13; i++ {
		first = append(first, fmt.Sprintf("h%d", i))
	}
	first = append(first, "15/03/2024 08:30", "13.5", "g/dL", "12-16", "HEMOGLOBINA")
	second := []string{"Valor Referencia", "mEq/L", "98-107", "CLORO"}

	path := filepath.Join(t.TempDir(), "informe.pdf")
	if err := os.WriteFile(path, pdftest.Build(pdftest.Page(first...), pdftest.Page(second...)), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestListTools(t *testing.T) {
	cs := session(t)

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{SummaryTool, TokensTool, CatalogTool} {
		if !names[want] {
			t.Errorf("tool %s not listed", want)
		}
	}
}

func TestSummaryText(t *testing.T) {
	cs := session(t)
	res := call(t, cs, SummaryTool, map[string]any{"path": writeReport(t)})

	summary := text(t, res, 0)
	if !strings.HasPrefix(summary, ">15/03/2024 08:30:\n - Hemograma: Hb 13.5\n") {
		t.Errorf("summary =\n%s", summary)
	}
	if w := text(t, res, 1); !strings.Contains(w, "CLORO") {
		t.Errorf("warnings = %q, want the CLORO mismatch", w)
	}
}

func TestSummaryJSON(t *testing.T) {
	cs := session(t)
	res := call(t, cs, SummaryTool, map[string]any{"path": writeReport(t), "format": "json", "pages": []int{1}})

	var doc render.Document
	if err := json.Unmarshal([]byte(text(t, res, 0)), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Date != "15/03/2024" || len(doc.Sections) != 6 {
		t.Errorf("document = %+v", doc)
	}
	// Page 2 is not read, so there is no mismatch to report.
	if len(res.Content) != 1 {
		t.Errorf("got %d content items, want 1", len(res.Content))
	}
}

func TestTokens(t *testing.T) {
	cs := session(t)
	res := call(t, cs, TokensTool, map[string]any{"path": writeReport(t), "pages": []int{2}})

	var got struct {
		Pages [][]string `json:"pages"`
	}
	if err := json.Unmarshal([]byte(text(t, res, 0)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"Valor Referencia", "mEq/L", "98-107", "CLORO"}
	if len(got.Pages) != 1 || strings.Join(got.Pages[0], "|") != strings.Join(want, "|") {
		t.Errorf("pages = %q, want [%q]", got.Pages, want)
	}
}

func TestCatalog(t *testing.T) {
	cs := session(t)
	out := text(t, call(t, cs, CatalogTool, map[string]any{}), 0)
	if !strings.Contains(out, "HEMOGLOBINA") {
		t.Errorf("catalog does not list HEMOGLOBINA:\n%s", out)
	}
}

func TestToolErrors(t *testing.T) {
	cs := session(t)

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"no input", SummaryTool, map[string]any{}, "path or url is required"},
		{"missing file", SummaryTool, map[string]any{"path": filepath.Join(t.TempDir(), "nada.pdf")}, "nada.pdf"},
		{"bad format", SummaryTool, map[string]any{"path": writeReport(t), "format": "xml"}, `unknown format "xml"`},
		{"page out of range", TokensTool, map[string]any{"path": writeReport(t), "pages": []int{9}}, "page 9 out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, cs, tt.tool, tt.args)
			if !res.IsError {
				t.Fatalf("IsError = false, want a tool error; content = %+v", res.Content)
			}
			if len(res.Content) == 0 {
				t.Fatal("tool error has no content")
			}
			tc, ok := res.Content[0].(*mcp.TextContent)
			if !ok {
				t.Fatalf("content is %T, want TextContent", res.Content[0])
			}
			if !strings.Contains(tc.Text, tt.want) {
				t.Errorf("error text = %q, want it to contain %q", tc.Text, tt.want)
			}
		})
	}
}
