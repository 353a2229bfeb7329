package template

import "strings"

// Render builds the downloadable HTML document for a template.
//
// Values are interpolated as-is: title, content and image URL are not
// escaped, so callers must only render input they trust. An empty image URL
// still produces an <img> element.
func Render(title, content, imageURL string) string {
	var b strings.Builder
	b.Grow(len(title)*2 + len(content) + len(imageURL) + 256)

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html>\n")
	b.WriteString("  <head>\n")
	b.WriteString("    <title>" + title + "</title>\n")
	b.WriteString("  </head>\n")
	b.WriteString("  <body>\n")
	b.WriteString("    <h1>" + title + "</h1>\n")
	b.WriteString("    <p>" + content + "</p>\n")
	b.WriteString(`    <img src="` + imageURL + `" alt="Image" style="width: 300px;" />` + "\n")
	b.WriteString("  </body>\n")
	b.WriteString("</html>\n")

	return b.String()
}
