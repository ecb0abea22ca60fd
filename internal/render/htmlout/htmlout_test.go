package htmlout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/markup"
	"github.com/gompdf/pagefit/internal/tokens"
)

func TestWriteRoundTrips(t *testing.T) {
	g := tokens.MustGeometry(tokens.PageLetter)
	root := markup.Render(document.Sample(), constraints.Defaults(g), g, markup.Options{})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root))
	assert.True(t, strings.HasPrefix(buf.String(), "<!DOCTYPE html>"))
	assert.True(t, strings.HasSuffix(buf.String(), "</html>\n"))

	again, err := markup.Parse(&buf)
	require.NoError(t, err)
	assert.NotNil(t, markup.FindByClass(again, markup.ClassContent))
}
