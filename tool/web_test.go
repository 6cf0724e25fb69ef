package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/autocrew/core"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sample</title><script>alert("x")</script></head>
<body>
<nav><a href="/home">Home</a></nav>
<article>
<h1>Release Notes</h1>
<p>Version 2 is out.</p>
<ul><li>Faster startup</li><li>Fewer bugs</li></ul>
<p>See the <a href="https://example.com/changelog">changelog</a> for details.</p>
</article>
<footer>Copyright</footer>
</body>
</html>`

func webToolCtx() *core.ToolContext {
	return core.NewToolContext(context.Background(), "", "c1", core.CallerInfo{Role: "assistant"}, nil)
}

func TestWebFetchExtractsReadableText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	tool := NewWebFetchTool(srv.Client())
	out, err := tool.Call(webToolCtx(), map[string]any{"url": srv.URL})
	require.NoError(t, err)

	text, ok := out.(string)
	require.True(t, ok)
	assert.Contains(t, text, "# Release Notes")
	assert.Contains(t, text, "Version 2 is out.")
	assert.Contains(t, text, "- Faster startup")
	assert.Contains(t, text, "[changelog](https://example.com/changelog)")
	// Script and nav content is stripped.
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "Home")
}

func TestWebFetchReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	tool := NewWebFetchTool(srv.Client())
	out, err := tool.Call(webToolCtx(), map[string]any{"url": srv.URL})
	require.NoError(t, err)
	assert.Contains(t, out, "Error fetching URL")
}

func TestWebFetchUnreachableHost(t *testing.T) {
	tool := NewWebFetchTool(&http.Client{})
	out, err := tool.Call(webToolCtx(), map[string]any{"url": "http://127.0.0.1:1/nope"})
	require.NoError(t, err)
	assert.Contains(t, out, "Error fetching URL")
}
