// Package utm appends UTM tracking parameters to outbound links, both in the
// source list and inside the reply text. Annotation is best-effort: anything
// unparsable passes through unchanged.
package utm

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"chat-guardian-be/pkg/guardian"
)

const paramName = "utm_source"

var (
	offsetPathRe   = regexp.MustCompile(`/\(offset\)/\d+`)
	markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(\s*(https?://[^\s)]+)([^)]*)\)`)
	plainURLRe     = regexp.MustCompile(`https?://[^\s]+`)
)

// AnnotateURL adds the utm_source parameter to a URL unless it already has
// one, merging with the existing query string. Pagination offset artifacts
// are stripped first. A URL that does not parse is returned as-is.
func AnnotateURL(rawURL, utmSource string) string {
	rawURL = offsetPathRe.ReplaceAllString(rawURL, "")

	if utmSource == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return rawURL
	}

	q := u.Query()
	if q.Has(paramName) {
		return rawURL
	}
	q.Set(paramName, utmSource)
	u.RawQuery = q.Encode()
	return u.String()
}

// AnnotateSources returns a copy of the source list with every URL annotated.
func AnnotateSources(list []guardian.Source, utmSource string) []guardian.Source {
	if utmSource == "" {
		return list
	}
	out := make([]guardian.Source, len(list))
	for i, s := range list {
		out[i] = guardian.Source{URL: AnnotateURL(s.URL, utmSource), Label: s.Label}
	}
	return out
}

// AnnotateText finds all HTTP/HTTPS links in text and adds UTM tracking.
// Existing markdown links keep their link text; bare URLs are rewritten as
// markdown links with a name derived from the URL path.
func AnnotateText(text, utmSource string) string {
	if utmSource == "" {
		return text
	}

	// Markdown links are lifted out behind placeholders first so the plain
	// URL pass cannot mangle their targets.
	placeholders := make(map[string]string)
	text = markdownLinkRe.ReplaceAllStringFunc(text, func(match string) string {
		m := markdownLinkRe.FindStringSubmatch(match)
		annotated := fmt.Sprintf("[%s](%s%s)", m[1], AnnotateURL(m[2], utmSource), m[3])
		key := "__MARKDOWN_LINK_" + strings.ReplaceAll(uuid.NewString(), "-", "") + "__"
		placeholders[key] = annotated
		return key
	})

	text = plainURLRe.ReplaceAllStringFunc(text, func(match string) string {
		return plainURLToMarkdown(match, utmSource)
	})

	for key, link := range placeholders {
		text = strings.Replace(text, key, link, 1)
	}

	return text
}

func plainURLToMarkdown(raw, utmSource string) string {
	url, suffix := splitTrailing(raw)
	annotated := AnnotateURL(url, utmSource)
	return fmt.Sprintf("[%s](%s)%s", nameFromURL(url, annotated), annotated, suffix)
}

// splitTrailing peels trailing punctuation and unbalanced closing parens off
// a matched URL; they belong to the surrounding sentence.
func splitTrailing(url string) (string, string) {
	suffix := ""
	for url != "" && strings.ContainsRune(".,!?;", rune(url[len(url)-1])) {
		suffix = url[len(url)-1:] + suffix
		url = url[:len(url)-1]
	}
	for strings.HasSuffix(url, ")") && strings.Count(url, "(") < strings.Count(url, ")") {
		suffix = ")" + suffix
		url = url[:len(url)-1]
	}
	return url, suffix
}

// nameFromURL derives a human-readable link name from the last meaningful
// path segment, falling back to the domain and finally the URL itself.
func nameFromURL(rawURL, fallback string) string {
	base, _, _ := strings.Cut(rawURL, "?")
	base, _, _ = strings.Cut(base, "#")
	parts := strings.Split(strings.TrimRight(base, "/"), "/")

	var name string
	switch {
	case len(parts) > 3 && parts[len(parts)-1] != "":
		name = parts[len(parts)-1]
	case len(parts) > 4 && parts[len(parts)-2] != "":
		name = parts[len(parts)-2]
	case len(parts) > 2:
		name = parts[2]
	default:
		name = rawURL
	}

	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = titleWords(name)

	if len(name) < 3 {
		return fallback
	}
	return name
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
