package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

func TestExtract(t *testing.T) {
	src := `<html><head><title>Spec</title><style>p{}</style></head>
<body><h1>Room Finishes</h1><script>alert(1)</script>
<table><tr><td>R101</td><td>Office</td></tr></table>
<p>Walls &amp; ceilings</p><!-- draft --></body></html>`

	pages, err := New().Extract(context.Background(), &domain.Upload{Filename: "finishes.html", Content: []byte(src)})
	require.NoError(t, err)
	require.Len(t, pages, 1)

	text := pages[0].Text
	assert.Contains(t, text, "Room Finishes")
	assert.Contains(t, text, "R101 Office")
	assert.Contains(t, text, "Walls & ceilings")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "draft")
	assert.NotContains(t, text, "<")
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"breaks", "a<br/>b<hr>c", "a\nb\nc"},
		{"entities", "&lt;D1&gt;", "<D1>"},
		{"whitespace", "<p>  a   b  </p>", "a b"},
		{"empty", "<div></div>", ""},
		{"cells", "<table><tr><th>Mark</th><th>Rating</th></tr><tr><td>D1</td><td>FD30</td></tr></table>", "Mark Rating\nD1 FD30"},
		{"hidden", "<noscript>enable js</noscript><template>t</template>kept", "kept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stripHTML(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Empty(t *testing.T) {
	pages, err := New().Extract(context.Background(), &domain.Upload{Filename: "e.html", Content: []byte("<html></html>")})
	require.NoError(t, err)
	assert.Empty(t, pages)
}
