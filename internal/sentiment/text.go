package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]+>`)
)

func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

var plainRenderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
	Flags: blackfriday.HTMLFlagsNone,
})

// PlainText flattens markdown review text into a single line before it is
// sent to the external model. Link targets are dropped and link labels kept.
// Rule-based scoring always sees the raw text.
func PlainText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input),
		blackfriday.WithNoExtensions(),
		blackfriday.WithRenderer(plainRenderer))
	stripped := htmlTagPattern.ReplaceAllString(string(output), " ")
	return html.UnescapeString(strings.Join(strings.Fields(stripped), " "))
}
