package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func TestArticleText(t *testing.T) {
	html := `<html><body>
		<article>
			<p>  First   paragraph. </p>
			<p>Second paragraph.</p>
		</article>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	out := articleText(doc, 600)
	if !strings.Contains(out, "First paragraph.") {
		t.Errorf("Expected normalized first paragraph, got %q", out)
	}
	if !strings.Contains(out, "Second paragraph.") {
		t.Errorf("Expected second paragraph, got %q", out)
	}
}

func TestArticleTextCapped(t *testing.T) {
	html := `<article><p>` + strings.Repeat("word ", 500) + `</p></article>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	out := articleText(doc, 100)
	if len(out) > 100 {
		t.Errorf("Expected text capped at 100 chars, got %d", len(out))
	}
}

func TestScrapeWithExcerpts(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/tag/bitcoin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<div class="article-card"><h2><a href="/news/one">Bitcoin breaks out</a></h2></div>
			<div class="article-card"><h2><a href="/news/two">Miners accumulate</a></h2></div>
		</body></html>`))
	})
	mux.HandleFunc("/news/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><article><p>Body text about the move.</p></article></body></html>`))
	})

	s := NewScraper(2 * time.Second)
	s.sources = []HeadlineSource{{
		Name: "TestWire",
		URL:  srv.URL + "/tag/{slug}",
		Selectors: HeadlineSelectors{
			Container: "div.article-card",
			Title:     "h2 a",
			URL:       "h2 a",
		},
	}}

	headlines := s.Scrape(context.Background(), "bitcoin", 10)
	if len(headlines) != 2 {
		t.Fatalf("Expected 2 headlines, got %d", len(headlines))
	}
	if headlines[0].Title != "Bitcoin breaks out" {
		t.Errorf("Unexpected first title: %q", headlines[0].Title)
	}
	if !strings.HasSuffix(headlines[0].URL, "/news/one") {
		t.Errorf("Expected absolute article URL, got %q", headlines[0].URL)
	}
	if headlines[0].Excerpt != "Body text about the move." {
		t.Errorf("Expected article body excerpt, got %q", headlines[0].Excerpt)
	}
}

func TestScrapeRespectsLimit(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/tag/bitcoin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<div class="article-card"><h2><a href="/news/one">One</a></h2></div>
			<div class="article-card"><h2><a href="/news/two">Two</a></h2></div>
			<div class="article-card"><h2><a href="/news/three">Three</a></h2></div>
		</body></html>`))
	})
	mux.HandleFunc("/news/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<article><p>body</p></article>`))
	})

	s := NewScraper(2 * time.Second)
	s.sources = []HeadlineSource{{
		Name:      "TestWire",
		URL:       srv.URL + "/tag/{slug}",
		Selectors: HeadlineSelectors{Container: "div.article-card", Title: "h2 a", URL: "h2 a"},
	}}

	headlines := s.Scrape(context.Background(), "bitcoin", 2)
	if len(headlines) != 2 {
		t.Errorf("Expected limit honored, got %d headlines", len(headlines))
	}
}

func TestScrapeUnreachableSource(t *testing.T) {
	s := NewScraper(200 * time.Millisecond)
	s.sources = []HeadlineSource{{
		Name:      "Dead",
		URL:       "http://127.0.0.1:1/tag/{slug}",
		Selectors: HeadlineSelectors{Container: "article", Title: "a", URL: "a"},
	}}

	if got := s.Scrape(context.Background(), "bitcoin", 5); len(got) != 0 {
		t.Errorf("Expected empty result from unreachable source, got %d", len(got))
	}
}

func TestFetchExcerptFailuresDegrade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewScraper(time.Second)
	if got := s.fetchExcerpt(context.Background(), srv.URL+"/gone"); got != "" {
		t.Errorf("Expected empty excerpt on http error, got %q", got)
	}
	if got := s.fetchExcerpt(context.Background(), ""); got != "" {
		t.Errorf("Expected empty excerpt for empty URL, got %q", got)
	}
}

func TestFormatHeadlines(t *testing.T) {
	out := formatHeadlines([]Headline{
		{Source: "TestWire", Title: "Bitcoin breaks out", Excerpt: "Body text."},
		{Source: "TestWire", Title: "Miners accumulate"},
	})
	if !strings.Contains(out, "- [TestWire] Bitcoin breaks out") {
		t.Errorf("Expected headline line, got %q", out)
	}
	if !strings.Contains(out, "Body text.") {
		t.Errorf("Expected excerpt line, got %q", out)
	}

	if got := formatHeadlines(nil); got != "(none available)" {
		t.Errorf("Expected placeholder for no headlines, got %q", got)
	}
}
