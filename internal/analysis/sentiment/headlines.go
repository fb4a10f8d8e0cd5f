package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"llm-portfolio-trader/internal/logger"
)

const (
	// excerptArticles is how many scraped articles get their body fetched.
	excerptArticles = 3
	// excerptMaxChars caps the body text kept per article.
	excerptMaxChars = 600

	userAgent = "Mozilla/5.0 (compatible; portfolio-trader/1.0)"
)

// Headline is one scraped news headline, optionally with a body excerpt.
type Headline struct {
	Source  string
	Title   string
	URL     string
	Excerpt string
}

// HeadlineSource defines one site to scrape
type HeadlineSource struct {
	Name      string
	URL       string // {slug} is replaced by the asset slug
	Selectors HeadlineSelectors
}

// HeadlineSelectors defines CSS selectors for extracting headline data
type HeadlineSelectors struct {
	Container string
	Title     string
	URL       string
}

// Scraper collects recent crypto headlines as a supplementary sentiment
// signal. Scrape failures degrade to an empty list, never to an error.
type Scraper struct {
	sources    []HeadlineSource
	timeout    time.Duration
	httpClient *http.Client
}

func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources:    defaultSources(),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func defaultSources() []HeadlineSource {
	return []HeadlineSource{
		{
			Name: "CoinDesk",
			URL:  "https://www.coindesk.com/tag/{slug}",
			Selectors: HeadlineSelectors{
				Container: "div.article-card",
				Title:     "h2 a, h3 a",
				URL:       "h2 a, h3 a",
			},
		},
		{
			Name: "Cointelegraph",
			URL:  "https://cointelegraph.com/tags/{slug}",
			Selectors: HeadlineSelectors{
				Container: "article",
				Title:     "a span",
				URL:       "a",
			},
		},
	}
}

// Scrape returns up to limit headlines for the given asset slug. The first
// few headlines also get a body excerpt so the model sees article tone, not
// just titles.
func (s *Scraper) Scrape(ctx context.Context, slug string, limit int) []Headline {
	var headlines []Headline

	for _, src := range s.sources {
		if len(headlines) >= limit {
			break
		}
		found := s.scrapeSource(ctx, src, slug, limit-len(headlines))
		headlines = append(headlines, found...)
	}

	for i := range headlines {
		if i >= excerptArticles {
			break
		}
		headlines[i].Excerpt = s.fetchExcerpt(ctx, headlines[i].URL)
	}
	return headlines
}

func (s *Scraper) scrapeSource(ctx context.Context, src HeadlineSource, slug string, limit int) []Headline {
	var out []Headline

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnHTML(src.Selectors.Container, func(e *colly.HTMLElement) {
		if len(out) >= limit {
			return
		}

		title := cleanText(e.DOM.Find(src.Selectors.Title).First().Text())
		if title == "" {
			return
		}

		href, _ := e.DOM.Find(src.Selectors.URL).First().Attr("href")
		out = append(out, Headline{
			Source: src.Name,
			Title:  title,
			URL:    e.Request.AbsoluteURL(href),
		})
	})

	url := strings.ReplaceAll(src.URL, "{slug}", slug)
	if err := c.Visit(url); err != nil {
		logger.Warn(ctx, "Headline scrape failed", "source", src.Name, "url", url, "error", err)
		return nil
	}
	c.Wait()

	logger.Debug(ctx, "Headlines scraped", "source", src.Name, "count", len(out))
	return out
}

// fetchExcerpt pulls one article page and extracts its leading paragraph
// text. Any failure degrades to an empty excerpt.
func (s *Scraper) fetchExcerpt(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Debug(ctx, "Article fetch failed", "url", url, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	return articleText(doc, excerptMaxChars)
}

// articleText extracts the paragraph text of an article document. Kept
// small: the model only needs enough body text to judge tone.
func articleText(doc *goquery.Document, maxChars int) string {
	var sb strings.Builder
	doc.Find("article p, div.article-body p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		sb.WriteString(cleanText(sel.Text()))
		sb.WriteString("\n")
		return sb.Len() < maxChars
	})

	out := strings.TrimSpace(sb.String())
	if len(out) > maxChars {
		out = out[:maxChars]
	}
	return out
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func formatHeadlines(hs []Headline) string {
	if len(hs) == 0 {
		return "(none available)"
	}
	var sb strings.Builder
	for _, h := range hs {
		fmt.Fprintf(&sb, "- [%s] %s\n", h.Source, h.Title)
		if h.Excerpt != "" {
			fmt.Fprintf(&sb, "  %s\n", h.Excerpt)
		}
	}
	return sb.String()
}
