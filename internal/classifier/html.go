package classifier

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML returns the visible text of an HTML document. Script and style
// contents are dropped.
func StripHTML(src string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(src))

	var b strings.Builder
	skipDepth := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
}

// FirstImageURL returns the src of the first <img> in an HTML fragment, or
// empty when none exists.
func FirstImageURL(src string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return ""
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := tokenizer.TagName()
		if string(name) != "img" || !hasAttr {
			continue
		}
		for {
			key, val, more := tokenizer.TagAttr()
			if string(key) == "src" {
				return string(val)
			}
			if !more {
				break
			}
		}
	}
}
