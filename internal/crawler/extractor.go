package crawler

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Markers that suggest the page is an error dump rather than content.
var errorMarkers = []string{"Exception", "Stack trace", "Traceback (most recent call last)"}

// Extractor turns fetched HTML into a structured Artifact. The zero value
// is not usable; construct with NewExtractor.
type Extractor struct {
	keywords []string
}

// NewExtractor builds an extractor that scans script bodies for the given
// keywords. Keywords may be nil.
func NewExtractor(keywords []string) *Extractor {
	return &Extractor{keywords: normalizeKeywords(keywords)}
}

// Extract parses body and collects links, text, meta tags, forms, media
// URLs, script keyword hits, and emails. Malformed HTML yields an artifact
// with empty collections rather than an error: one bad page must never
// abort a run.
func (e *Extractor) Extract(body []byte, baseURL string) Artifact {
	artifact := Artifact{Meta: map[string]string{}, ScriptHits: map[string]string{}}

	base, err := url.Parse(baseURL)
	if err != nil {
		return artifact
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return artifact
	}

	e.extractLinks(doc, base, &artifact)
	e.extractMeta(doc, &artifact)
	e.extractForms(doc, &artifact)
	e.extractMedia(doc, base, &artifact)
	e.extractScripts(doc, base, &artifact)
	e.extractText(doc, &artifact)

	artifact.Emails = emailPattern.FindAllString(string(body), -1)
	for _, marker := range errorMarkers {
		if bytes.Contains(body, []byte(marker)) {
			artifact.SuspectedError = true
			break
		}
	}
	return artifact
}

func (e *Extractor) extractLinks(doc *goquery.Document, base *url.URL, artifact *Artifact) {
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if abs, ok := ResolveLink(base, href); ok {
			artifact.Links = append(artifact.Links, abs)
		}
	})
}

func (e *Extractor) extractMeta(doc *goquery.Document, artifact *Artifact) {
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok {
			name, ok = sel.Attr("property")
		}
		if !ok || name == "" {
			return
		}
		content, _ := sel.Attr("content")
		// Last wins on duplicate names.
		artifact.Meta[name] = content
	})
}

func (e *Extractor) extractForms(doc *goquery.Document, artifact *Artifact) {
	doc.Find("form").Each(func(_ int, sel *goquery.Selection) {
		form := Form{}
		form.Action, _ = sel.Attr("action")
		sel.Find("input[name], textarea[name], select[name]").Each(func(_ int, field *goquery.Selection) {
			if name, ok := field.Attr("name"); ok && name != "" {
				form.Fields = append(form.Fields, name)
			}
		})
		artifact.Forms = append(artifact.Forms, form)
	})
}

func (e *Extractor) extractMedia(doc *goquery.Document, base *url.URL, artifact *Artifact) {
	seen := make(map[string]struct{})
	doc.Find("img[src], video[src], source[src], audio[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		abs, ok := ResolveLink(base, src)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		artifact.MediaURLs = append(artifact.MediaURLs, abs)
	})
}

func (e *Extractor) extractScripts(doc *goquery.Document, base *url.URL, artifact *Artifact) {
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			if abs, resolved := ResolveLink(base, src); resolved {
				artifact.ScriptSrcs = append(artifact.ScriptSrcs, abs)
			}
			return
		}
		scanScriptBody(sel.Text(), e.keywords, artifact.ScriptHits)
	})
}

// scanScriptBody records, for each keyword found, the line containing its
// first occurrence. This is a bounded pattern search, not a JavaScript
// interpreter: values computed at page runtime are invisible to it.
func scanScriptBody(script string, keywords []string, hits map[string]string) {
	if script == "" || len(keywords) == 0 {
		return
	}
	for _, kw := range keywords {
		if _, done := hits[kw]; done {
			continue
		}
		idx := strings.Index(script, kw)
		if idx < 0 {
			continue
		}
		hits[kw] = surroundingLine(script, idx)
	}
}

// surroundingLine returns the full line that contains offset, trimmed.
func surroundingLine(s string, offset int) string {
	start := strings.LastIndexByte(s[:offset], '\n') + 1
	end := strings.IndexByte(s[offset:], '\n')
	if end < 0 {
		end = len(s)
	} else {
		end += offset
	}
	return strings.TrimSpace(s[start:end])
}

// extractText walks visible text nodes in document order, skipping script
// and style subtrees.
func (e *Extractor) extractText(doc *goquery.Document, artifact *Artifact) {
	for _, root := range doc.Selection.Nodes {
		collectTextBlocks(root, artifact)
	}
}

func collectTextBlocks(n *html.Node, artifact *Artifact) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			artifact.TextBlocks = append(artifact.TextBlocks, text)
		}
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectTextBlocks(child, artifact)
	}
}
