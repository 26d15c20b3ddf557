package utils

import "github.com/microcosm-cc/bluemonday"

// sanitizer allow-lists the rich-text vocabulary the post editor emits:
// the standard UGC set plus images, underline/strikethrough and the
// heading levels the toolbar offers. Image sources may be inline data
// URIs because the editor embeds pasted images that way.
var sanitizer = newPostPolicy()

func newPostPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img", "h1", "h2", "u", "s")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("href", "name", "target").OnElements("a")
	p.AllowDataURIImages()
	return p
}

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
