package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

// linkAttributes are the attributes whose values are treated as text, so a
// URL hidden behind anchor text is still found.
var linkAttributes = map[string]bool{
	"href":   true,
	"src":    true,
	"action": true,
}

// TextFromHTML flattens an HTML document into plain text. Script and style
// contents are dropped; href, src and action values are kept.
func TextFromHTML(document string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(document))

	var (
		b    strings.Builder
		skip int
	)

	write := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}

		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(s)
	}

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed document; either way keep what was read
			return b.String()
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()

			if token.Data == "script" || token.Data == "style" {
				if token.Type == html.StartTagToken {
					skip++
				}

				continue
			}

			for _, attr := range token.Attr {
				if linkAttributes[strings.ToLower(attr.Key)] {
					write(attr.Val)
				}
			}
		case html.EndTagToken:
			token := tokenizer.Token()
			if (token.Data == "script" || token.Data == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				write(tokenizer.Token().Data)
			}
		}
	}
}

// LooksLikeHTML reports whether text appears to be an HTML document.
func LooksLikeHTML(text string) bool {
	lower := strings.ToLower(text)

	for _, marker := range []string{"<html", "<body", "<a ", "<div", "<p>", "<br", "<table"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}
