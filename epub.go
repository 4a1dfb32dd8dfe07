package main

import (
	"encoding/base64"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	epub "github.com/go-shiori/go-epub"
)

const bookCSS = `body { margin: 1em; line-height: 1.6; }
img { max-width: 100%; height: auto; }
h1 { font-size: 1.4em; margin-bottom: 0.2em; }
.entry-date { font-size: 0.85em; color: #666; margin-top: 0; margin-bottom: 1.5em; }
.img-gallery { margin: 1em 0; }
.img-gallery img { margin: 0.2em; }
.cover { text-align: center; margin: 0; padding: 0; }
.toc { list-style-type: none; padding-left: 0; }
.toc li { margin-bottom: 0.6em; }
.toc a { text-decoration: none; }
.toc-date { font-size: 0.85em; color: #666; }`

func entryFileName(i int) string {
	return fmt.Sprintf("entry%04d.xhtml", i+1)
}

// buildTOCBody renders the contents page linking every entry section.
func buildTOCBody(entries []diaryEntry) string {
	var b strings.Builder
	b.WriteString("<h1>Contents</h1>\n<ol class=\"toc\">\n")
	for i, e := range entries {
		fmt.Fprintf(&b, `<li><a href="%s">%s</a>`, entryFileName(i), html.EscapeString(e.Title))
		if e.dated() {
			fmt.Fprintf(&b, ` <span class="toc-date">%s</span>`, e.Date.Format("2006.01.02"))
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>\n")
	return b.String()
}

// entryHeader is the heading block every section starts with.
func entryHeader(e diaryEntry) string {
	s := "<h1>" + html.EscapeString(e.Title) + "</h1>\n"
	if e.dated() {
		s += `<p class="entry-date">` + e.Date.Format("2006.01.02") + "</p>\n"
	}
	return s
}

// imageEmbedder adds local images to the book once each and hands out
// their paths inside it. Remote images are dropped.
type imageEmbedder struct {
	book  *epub.Epub
	roots []string
	added map[string]string
}

func newImageEmbedder(book *epub.Epub, roots []string) *imageEmbedder {
	return &imageEmbedder{book: book, roots: roots, added: map[string]string{}}
}

func (m *imageEmbedder) src(src string) string {
	if src == "" || isRemote(src) || strings.HasPrefix(src, "//") {
		return ""
	}
	if strings.HasPrefix(src, "data:") {
		return m.add(src, dataURIExt(src))
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	for _, root := range m.roots {
		p := filepath.Join(root, filepath.FromSlash(strings.TrimLeft(src, "/")))
		if fileExists(p) {
			return m.add(p, filepath.Ext(p))
		}
	}
	fmt.Fprintf(logOut, "Warning: image %s not found, dropped from book\n", src)
	return ""
}

// dataURIExt picks a file extension from the media type of a data URI.
func dataURIExt(uri string) string {
	mime, _, _ := strings.Cut(strings.TrimPrefix(uri, "data:"), ";")
	switch mime {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	}
	return ".jpg"
}

func (m *imageEmbedder) add(source, ext string) string {
	if p, ok := m.added[source]; ok {
		return p
	}
	name := fmt.Sprintf("img%04d%s", len(m.added)+1, strings.ToLower(ext))
	p, err := m.book.AddImage(source, name)
	if err != nil {
		fmt.Fprintf(logOut, "Warning: could not add image %s: %v\n", name, err)
		return ""
	}
	m.added[source] = p
	return p
}

// buildEpub writes the book: cover, contents page, then one section per
// entry.
func buildEpub(entries []diaryEntry, opts exportOpts) error {
	e, err := epub.NewEpub(opts.title)
	if err != nil {
		return fmt.Errorf("creating epub: %w", err)
	}
	e.SetLang("zh")
	if opts.author != "" {
		e.SetAuthor(opts.author)
	}

	cssDataURI := "data:text/css;base64," + base64.StdEncoding.EncodeToString([]byte(bookCSS))
	cssPath, err := e.AddCSS(cssDataURI, "styles.css")
	if err != nil {
		fmt.Fprintf(logOut, "Warning: could not add CSS: %v\n", err)
		cssPath = ""
	}

	cover, err := generateCover(opts.title, len(entries), yearSpan(entries))
	if err != nil {
		return err
	}
	coverPath, err := e.AddImage("data:image/png;base64,"+base64.StdEncoding.EncodeToString(cover), "cover.png")
	if err != nil {
		return fmt.Errorf("adding cover: %w", err)
	}
	coverBody := `<div class="cover"><img src="` + coverPath + `" alt="` + html.EscapeString(opts.title) + `"/></div>`
	if _, err := e.AddSection(coverBody, "Cover", "cover.xhtml", cssPath); err != nil {
		return fmt.Errorf("adding cover section: %w", err)
	}

	if _, err := e.AddSection(buildTOCBody(entries), "Contents", "contents.xhtml", cssPath); err != nil {
		fmt.Fprintf(logOut, "Warning: could not add table of contents: %v\n", err)
	}

	images := newImageEmbedder(e, opts.imageRoots)
	for i, entry := range entries {
		body, err := sanitizeForXHTML(entry.Content, images.src)
		if err != nil {
			fmt.Fprintf(logOut, "Warning: %s: %v\n", entry.Name, err)
			continue
		}
		if _, err := e.AddSection(entryHeader(entry)+body, entry.Title, entryFileName(i), cssPath); err != nil {
			fmt.Fprintf(logOut, "Warning: could not add section %q: %v\n", entry.Title, err)
		}
	}

	if err := e.Write(opts.output); err != nil {
		return fmt.Errorf("writing epub: %w", err)
	}
	return nil
}
