package extract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragd/pkg/extract"
)

func TestPlainTextPassthrough(t *testing.T) {
	text, err := extract.Text("notes.txt", strings.NewReader("line one\nline two"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestHTMLStripping(t *testing.T) {
	html := `<html><head><style>body { color: red; }</style></head>
<body><h1>Title</h1><script>alert("x")</script><p>First   paragraph.</p><p>Second.</p></body></html>`

	text, err := extract.Text("page.html", strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, "Title First paragraph. Second.", text)
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color: red")
}

func TestUnsupportedExtension(t *testing.T) {
	_, err := extract.Text("report.pdf", strings.NewReader("%PDF-1.4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
