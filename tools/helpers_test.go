package tools

import (
	"io"
	"log/slog"
	"testing"

	"github.com/lexandro/filetally-mcp/classify"
	"github.com/lexandro/filetally-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/language"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, files ...classify.FileDescriptor) *index.Session {
	t.Helper()
	session, err := index.NewSession(classify.NewClassifier(language.English))
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	if len(files) > 0 {
		if _, err := session.Add(files...); err != nil {
			t.Fatalf("failed to add files: %v", err)
		}
	}
	return session
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected result content")
	}
	return result.Content[0].(*mcp.TextContent).Text
}
