package extract

import (
	"strings"
	"testing"
)

func TestDetectKind(t *testing.T) {
	if k := DetectKind([]byte("%PDF-1.4 rest")); k != KindPDF {
		t.Fatalf("expected pdf kind")
	}
	if k := DetectKind([]byte("<!doctype html><html></html>")); k != KindHTML {
		t.Fatalf("expected html kind")
	}
	if k := DetectKind([]byte("%PD")); k != KindHTML {
		t.Fatalf("short prefix must not classify as pdf")
	}
	if k := DetectKind(nil); k != KindHTML {
		t.Fatalf("empty input treated as text")
	}
}

func TestFromHTML_SkipsNavKeepsArticle(t *testing.T) {
	input := `<html><head><title>T</title></head><body>` +
		`<nav>Home About</nav>` +
		`<article><h1>Title</h1><p>Real sentence here.</p></article>` +
		`</body></html>`

	doc, err := FromHTML([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(doc.Text, "### H1") {
		t.Fatalf("expected heading marker, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Real sentence here.") {
		t.Fatalf("expected article sentence, got %q", doc.Text)
	}
	if strings.Contains(doc.Text, "Home") || strings.Contains(doc.Text, "About") {
		t.Fatalf("nav text must be suppressed, got %q", doc.Text)
	}
	if !doc.MainContent {
		t.Fatalf("expected article container to be noted")
	}
	if doc.Title != "T" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
}

func TestFromHTML_ScriptAndStyleDiscarded(t *testing.T) {
	input := `<body><script>var x = "secret";</script><style>.a{color:red}</style><p>Visible text.</p></body>`
	doc, err := FromHTML([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(doc.Text, "secret") || strings.Contains(doc.Text, "color") {
		t.Fatalf("script/style content leaked: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Visible text.") {
		t.Fatalf("expected visible paragraph, got %q", doc.Text)
	}
}

func TestFromHTML_ClassDenylistScopeNesting(t *testing.T) {
	// A denylisted container nested inside another denylisted container must
	// not end suppression early when the inner one closes.
	input := `<body>` +
		`<div class="sidebar">outer junk<div class="menu">inner junk</div>more junk</div>` +
		`<p>Actual content sentence.</p></body>`
	doc, err := FromHTML([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, junk := range []string{"outer junk", "inner junk", "more junk"} {
		if strings.Contains(doc.Text, junk) {
			t.Fatalf("suppressed text %q leaked: %q", junk, doc.Text)
		}
	}
	if !strings.Contains(doc.Text, "Actual content sentence.") {
		t.Fatalf("content after suppression scope lost: %q", doc.Text)
	}
}

func TestFromHTML_SameTagNestingInsideSuppression(t *testing.T) {
	input := `<body><div class="nav">junk<div>nested</div>tail</div><p>Keep this sentence.</p></body>`
	doc, err := FromHTML([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(doc.Text, "junk") || strings.Contains(doc.Text, "nested") || strings.Contains(doc.Text, "tail") {
		t.Fatalf("nested same-tag suppression leaked: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Keep this sentence.") {
		t.Fatalf("content lost: %q", doc.Text)
	}
}

func TestFromHTML_CodeMarkers(t *testing.T) {
	input := `<body><p>Run <code>go test</code> locally.</p><pre>func main() {}</pre></body>`
	doc, err := FromHTML([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(doc.Text, "`go test") {
		t.Fatalf("expected inline code backticks, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "```") {
		t.Fatalf("expected pre fence, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "func main() {}") {
		t.Fatalf("expected code body, got %q", doc.Text)
	}
}

func TestFromHTML_TinyTextFragmentsDropped(t *testing.T) {
	input := `<body><p>ab</p><p>A full sentence instead.</p></body>`
	doc, err := FromHTML([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(doc.Text, "ab") {
		t.Fatalf("two-character fragment should be dropped: %q", doc.Text)
	}
}

func TestFromHTML_WhitespaceNormalized(t *testing.T) {
	input := "<body><p>spaced    out</p>\n\n\n\n<p>next paragraph here</p></body>"
	doc, err := FromHTML([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(doc.Text, "  ") {
		t.Fatalf("space runs must collapse: %q", doc.Text)
	}
	if strings.Contains(doc.Text, "\n\n\n") {
		t.Fatalf("blank runs must collapse to two newlines: %q", doc.Text)
	}
}

func TestFromHTML_EntitiesUnescaped(t *testing.T) {
	input := `<body><p>Fish &amp; chips &lt;here&gt;.</p></body>`
	doc, err := FromHTML([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(doc.Text, "Fish & chips <here>.") {
		t.Fatalf("expected unescaped entities, got %q", doc.Text)
	}
}

func TestStripTags(t *testing.T) {
	input := "<div><b>bold</b> text</div>\n\n\n[link](http://x.test)\nplain"
	got := StripTags(input)
	if strings.Contains(got, "<") || strings.Contains(got, "](") {
		t.Fatalf("tags or links left behind: %q", got)
	}
	if !strings.Contains(got, "bold text") || !strings.Contains(got, "plain") {
		t.Fatalf("text content lost: %q", got)
	}
}

func TestFromHTML_OversizedTokenReportsError(t *testing.T) {
	blob := strings.Repeat("A", maxTokenSize+1024)
	input := `<html><body><p data-blob="` + blob + `">Real sentence here.</p></body></html>`

	_, err := FromHTML([]byte(input))
	if err == nil {
		t.Fatal("expected tokenizer error for oversized token")
	}
}
