package htmldiff_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/aretw0/historyviewer/pkg/htmldiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		comparison string
		want       string
	}{
		{"replace", "1st", "One", "<ins>1st</ins> <del>One</del>"},
		{"equal", "same text", "same text", "same text"},
		{"insert", "Hello brave world", "Hello world", "Hello <ins>brave</ins> world"},
		{"delete", "Hello world", "Hello cruel world", "Hello <del>cruel</del> world"},
		{"from empty", "New", "", "<ins>New</ins>"},
		{"to empty", "", "Old", "<del>Old</del>"},
		{"both empty", "", "", ""},
		{"nbsp is a space", "a&nbsp;b", "a b", "a b"},
		{"whitespace collapsed", "  one\n\ttwo  ", "one two", "one two"},
		{"word inside tag", "<p>Hello world</p>", "<p>Hello there</p>", "<p> Hello <ins>world</ins> <del>there</del> </p>"},
		{"changed element kept whole", "<p>Hi</p>", "<h1>Hi</h1>", "<ins><p> Hi </p></ins> <del><h1> Hi </h1></del>"},
		{"tag with attributes", `<a href="/x">go</a>`, `<a href="/y">go</a>`, `<ins><a href="/x"> go </a></ins> <del><a href="/y"> go </a></del>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, htmldiff.Compare(tt.current, tt.comparison))
		})
	}
}

func TestCompare_VoidElementDoesNotSwallowRest(t *testing.T) {
	got := htmldiff.Compare("one<br>two three", "one two four")
	assert.Equal(t, "one <ins><br></ins> two <ins>three</ins> <del>four</del>", got)
}

func TestCompare_Escape(t *testing.T) {
	got := htmldiff.Compare("Tom & Jerry", "Tom and Jerry", htmldiff.WithEscape())
	assert.Equal(t, "Tom <ins>&amp;</ins> <del>and</del> Jerry", got)
}

func TestCompare_MarkupParses(t *testing.T) {
	current := "<p>The quick brown fox</p><p>jumps over the dog</p>"
	comparison := "<p>The slow brown fox</p><p>jumps over the lazy dog</p>"

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmldiff.Compare(current, comparison)))
	require.NoError(t, err)

	assert.Equal(t, "quick", doc.Find("ins").First().Text())
	assert.Equal(t, "slow", doc.Find("del").First().Text())
	assert.Equal(t, "lazy", doc.Find("del").Last().Text())
	assert.Equal(t, 2, doc.Find("p").Length())
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", htmldiff.Stringify(nil))
	assert.Equal(t, "text", htmldiff.Stringify("text"))
	assert.Equal(t, "42", htmldiff.Stringify(42))
	assert.Equal(t, "1.5", htmldiff.Stringify(1.5))
	assert.Equal(t, "true", htmldiff.Stringify(true))
	assert.Equal(t, "a,b", htmldiff.Stringify([]string{"a", "b"}))
	assert.Equal(t, "a,2", htmldiff.Stringify([]any{"a", 2}))
}
