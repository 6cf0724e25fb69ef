package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("Hello {{.Name}}, task: {{.Task}}", map[string]any{
		"Name": "writer",
		"Task": "draft the intro",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello writer, task: draft the intro", out)
}

func TestRenderTemplatePlainTextPassthrough(t *testing.T) {
	out, err := RenderTemplate("no markers here", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers here", out)
}

func TestRenderTemplateHelpers(t *testing.T) {
	state := map[string]any{
		"Roles": []string{"orchestrator", "writer"},
		"Empty": "",
	}

	out, err := RenderTemplate("{{bullet .Roles}}", state)
	require.NoError(t, err)
	assert.Equal(t, "- orchestrator\n- writer", out)

	out, err = RenderTemplate(`{{join ", " .Roles}}`, state)
	require.NoError(t, err)
	assert.Equal(t, "orchestrator, writer", out)

	out, err = RenderTemplate(`{{default "fallback" .Empty}}`, state)
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)

	out, err = RenderTemplate(`{{upper "shout"}}`, state)
	require.NoError(t, err)
	assert.Equal(t, "SHOUT", out)
}

func TestRenderTemplateParseError(t *testing.T) {
	_, err := RenderTemplate("{{.Broken", nil)
	assert.Error(t, err)
}
