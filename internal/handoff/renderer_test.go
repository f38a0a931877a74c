package handoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererFillsPlaceholders(t *testing.T) {
	out, err := Renderer{}.Render("t", "Hi {{name}}, see you at {{ time }}.", map[string]string{"name": "Ana", "time": "9:00 AM"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ana, see you at 9:00 AM.", out)
}

func TestRendererRejectsUnknownKeys(t *testing.T) {
	_, err := Renderer{}.Render("t", "Hi {{nickname}}", map[string]string{"name": "Ana"})
	require.Error(t, err)

	_, err = Renderer{}.Render("t", "", nil)
	require.Error(t, err)
}
