package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SingleBlockquoteVerbatim(t *testing.T) {
	e := NewExtractor(nil)

	quote := strings.Repeat("All code is a liability; ", 4) + "treat every line as a cost."
	require.Equal(t, 127, len(quote))

	html := fmt.Sprintf(`<html><head><title>Quiet Thoughts</title></head>
<body><blockquote>%s</blockquote></body></html>`, quote)

	d, err := e.Extract(html, "quietthoughts.dev")
	require.NoError(t, err)
	assert.Equal(t, quote, d.Quote)
	assert.Equal(t, "Quiet Thoughts", d.Title)
	assert.Equal(t, "quietthoughts.dev", d.Domain)
	assert.Equal(t, "https://quietthoughts.dev", d.URL)
}

func TestExtract_BoilerplateOnlyYieldsNothing(t *testing.T) {
	e := NewExtractor(nil)

	html := `<html><head><title>Newsletter</title></head>
<body><p>Subscribe to our newsletter for updates!</p></body></html>`

	d, err := e.Extract(html, "spammy.com")
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestExtract_RejectsNonHTML(t *testing.T) {
	e := NewExtractor(nil)

	d, err := e.Extract("just some plain text with no markup at all", "plain.org")
	assert.Nil(t, d)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoContent)
}

func TestExtract_Deterministic(t *testing.T) {
	e := NewExtractor(nil)

	html := `<html><head><title>Several Options</title></head><body>
<p>The first paragraph carries a reasonably long observation about craft.</p>
<p>The second paragraph is also long enough and talks about something else entirely.</p>
<blockquote>Good tools disappear; you only notice the ones that fight you back.</blockquote>
</body></html>`

	first, err := e.Extract(html, "options.io")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := e.Extract(html, "options.io")
		require.NoError(t, err)
		assert.Equal(t, first.Quote, again.Quote)
	}
}

func TestExtract_BlockquoteOutranksParagraph(t *testing.T) {
	e := NewExtractor(nil)

	html := `<html><head><title>Ranked</title></head><body>
<p>An ordinary body paragraph that is certainly long enough to qualify here.</p>
<blockquote>Quoted material should win over ordinary body copy at equal rank.</blockquote>
</body></html>`

	d, err := e.Extract(html, "ranked.app")
	require.NoError(t, err)
	assert.Equal(t, "Quoted material should win over ordinary body copy at equal rank.", d.Quote)
}

func TestExtract_QuotationMarksPreferred(t *testing.T) {
	e := NewExtractor(nil)

	html := `<html><head><title>Marks</title></head><body>
<p>A perfectly fine sentence but without any quotation marks inside it.</p>
<p>She said "the best interfaces are the ones nobody has to think about" and left.</p>
</body></html>`

	d, err := e.Extract(html, "marks.dev")
	require.NoError(t, err)
	assert.Contains(t, d.Quote, "nobody has to think about")
}

func TestExtract_TitleDefaultsAndCaps(t *testing.T) {
	e := NewExtractor(nil)

	t.Run("missing title defaults", func(t *testing.T) {
		html := `<html><body><p>Some acceptable paragraph text that is long enough to keep.</p></body></html>`
		d, err := e.Extract(html, "noname.io")
		require.NoError(t, err)
		assert.Equal(t, "Untitled", d.Title)
	})

	t.Run("overlong title capped", func(t *testing.T) {
		long := strings.Repeat("t", 400)
		html := fmt.Sprintf(`<html><head><title>%s</title></head><body><p>Some acceptable paragraph text that is long enough to keep.</p></body></html>`, long)
		d, err := e.Extract(html, "longname.io")
		require.NoError(t, err)
		assert.Len(t, d.Title, 200)
	})
}

func TestExtract_MetaDescription(t *testing.T) {
	e := NewExtractor(nil)

	html := `<html><head><title>Described</title>
<meta name="description" content="  A concise summary of the page.  ">
</head><body><p>Some acceptable paragraph text that is long enough to keep.</p></body></html>`

	d, err := e.Extract(html, "described.io")
	require.NoError(t, err)
	assert.Equal(t, "A concise summary of the page.", d.Description)
}

func TestExtract_LengthWindow(t *testing.T) {
	e := NewExtractor(nil)

	t.Run("too short rejected", func(t *testing.T) {
		html := `<html><body><p>Tiny.</p></body></html>`
		_, err := e.Extract(html, "tiny.io")
		assert.ErrorIs(t, err, ErrNoContent)
	})

	t.Run("too long rejected", func(t *testing.T) {
		html := fmt.Sprintf(`<html><body><p>%s</p></body></html>`, strings.Repeat("word ", 200))
		_, err := e.Extract(html, "ramble.io")
		assert.ErrorIs(t, err, ErrNoContent)
	})
}

func TestExtract_CodeLikeTextRejected(t *testing.T) {
	e := NewExtractor(nil)

	html := `<html><body><p>function initialize() { return answer; } // bootstraps the whole page</p></body></html>`
	_, err := e.Extract(html, "codey.io")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestExtract_OversizedInputTruncated(t *testing.T) {
	e := NewExtractor(nil)

	// Put the only viable quote past the size cap; it must be dropped.
	padding := strings.Repeat("<div>x</div>", 60000) // ~720KB
	html := fmt.Sprintf(`<html><body>%s<p>An acceptable sentence hidden far beyond the size cap boundary.</p></body></html>`, padding)
	_, err := e.Extract(html, "huge.io")
	assert.Error(t, err)
}
