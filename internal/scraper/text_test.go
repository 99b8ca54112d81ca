package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func blockTexts(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Text
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "main preferred over body",
			html: `<body>
				<p>Outside main and long enough to count</p>
				<main><p>Inside the main landmark region</p></main>
			</body>`,
			want: []string{"Inside the main landmark region"},
		},
		{
			name: "article used without main",
			html: `<body>
				<p>Outside article and long enough to count</p>
				<article><p>Inside the article landmark region</p></article>
			</body>`,
			want: []string{"Inside the article landmark region"},
		},
		{
			name: "body used without landmarks",
			html: `<body><p>Only the body holds this paragraph</p></body>`,
			want: []string{"Only the body holds this paragraph"},
		},
		{
			name: "short blocks dropped",
			html: `<main><p>Share</p><li>Twenty chars exactly</li><li>Twenty-one characters</li></main>`,
			want: []string{"Twenty-one characters"},
		},
		{
			name: "document order and nested blocks folded into outer",
			html: `<main>
				<div><h3>1. Bluebird Café</h3><p>What is it? A cosy nook.</p></div>
				<section><p>Second block of visible text</p></section>
			</main>`,
			want: []string{
				"1. Bluebird Café\nWhat is it? A cosy nook.",
				"Second block of visible text",
			},
		},
		{
			name: "qualifying paragraph inside a qualifying div kept once",
			html: `<main><div><p>Inner paragraph long enough to count</p></div></main>`,
			want: []string{"Inner paragraph long enough to count"},
		},
		{
			name: "script and style ignored",
			html: `<main><div><script>var tracking = "long script body";</script><style>.a{color:red}</style>Visible words in the block</div></main>`,
			want: []string{"Visible words in the block"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := Normalize(mustDoc(t, tt.html), 20)
			require.NoError(t, err)
			assert.Equal(t, tt.want, blockTexts(blocks))
			for _, b := range blocks {
				assert.Equal(t, 1, b.Node.Length())
			}
		})
	}
}

func TestNormalize_NoContentRegion(t *testing.T) {
	doc := goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})

	blocks, err := Normalize(doc, 20)
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Empty(t, blocks)
}

func TestText(t *testing.T) {
	doc := mustDoc(t, `<div id="x">  Bluebird <b>Café</b>
		<!-- hidden --> <span> Soho </span></div>`)

	sel := doc.Find("#x")
	assert.Equal(t, "Bluebird\nCafé\nSoho", Text(sel, "\n"))
	assert.Equal(t, "Bluebird Café Soho", Text(sel, " "))
}
