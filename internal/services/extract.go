package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"quizsolver/pkg/utils"
)

const (
	maxInstructionLen = 2000
	maxPageTextLen    = 4000
	maxResourceLinks  = 3
)

// QuizPage is what extraction pulls out of one rendered quiz page.
type QuizPage struct {
	Instruction   string
	SubmitURL     string
	PageText      string
	ResourceLinks []string
}

var (
	absoluteSubmitPattern = regexp.MustCompile(`https?://[^\s"'<>]+/submit[^\s"'<>]*`)
	quotedURLPattern      = regexp.MustCompile(`"url"\s*:\s*"(https?://[^"]+)"`)
	relativeSubmitPattern = regexp.MustCompile(`["'](/[^"']*submit[^"']*)["']`)
	whitespacePattern     = regexp.MustCompile(`\s+`)
)

var resourceExtensions = []string{".pdf", ".csv", ".json", ".txt", ".png", ".jpg", ".jpeg", ".gif", ".webp"}

// ParseQuizPage extracts the instruction, submission target and supporting
// resource links from rendered HTML. pageURL anchors relative links.
func ParseQuizPage(html string, pageURL string) (QuizPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return QuizPage{}, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	base, _ := url.Parse(pageURL)

	page := QuizPage{
		Instruction:   extractInstruction(doc),
		SubmitURL:     extractSubmitURL(doc, html, base),
		PageText:      collapseText(doc.Find("body").Text(), maxPageTextLen),
		ResourceLinks: extractResourceLinks(doc, base),
	}

	if page.Instruction == "" {
		return page, utils.ErrNoInstruction
	}
	if page.SubmitURL == "" {
		return page, utils.ErrNoSubmitURL
	}
	return page, nil
}

// extractInstruction prefers the #result element quiz pages render their
// question into, then falls back to the main content containers.
func extractInstruction(doc *goquery.Document) string {
	for _, sel := range []string{"#result", "main", "article", "body"} {
		text := collapseText(doc.Find(sel).First().Text(), maxInstructionLen)
		if text != "" {
			return text
		}
	}
	return ""
}

// extractSubmitURL looks for the grading endpoint: form actions and links
// first, then raw-HTML patterns.
func extractSubmitURL(doc *goquery.Document, html string, base *url.URL) string {
	var found string

	doc.Find("form[action]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		action, _ := s.Attr("action")
		if strings.Contains(strings.ToLower(action), "submit") {
			found = resolveURL(base, action)
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.Contains(strings.ToLower(href), "submit") {
			found = resolveURL(base, href)
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	if m := absoluteSubmitPattern.FindString(html); m != "" {
		return m
	}
	if m := quotedURLPattern.FindStringSubmatch(html); len(m) > 1 {
		return m[1]
	}
	if m := relativeSubmitPattern.FindStringSubmatch(html); len(m) > 1 {
		return resolveURL(base, m[1])
	}
	return ""
}

func extractResourceLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	var links []string

	add := func(ref string) {
		if len(links) >= maxResourceLinks {
			return
		}
		resolved := resolveURL(base, ref)
		if resolved == "" || seen[resolved] {
			return
		}
		parsed, err := url.Parse(resolved)
		if err != nil {
			return
		}
		path := strings.ToLower(parsed.Path)
		for _, ext := range resourceExtensions {
			if strings.HasSuffix(path, ext) {
				seen[resolved] = true
				links = append(links, resolved)
				return
			}
		}
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			add(href)
		}
	})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			add(src)
		}
	})

	return links
}

func resolveURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}

func collapseText(s string, max int) string {
	s = strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
	if max > 0 && len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
