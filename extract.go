// Splitting a Facebook export page into one HTML file per post.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JohannesKaufmann/dom"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

const postTemplate = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>
`

type extractOpts struct {
	src             string
	out             string
	descending      bool
	archiveRoot     string
	sectionSelector string
	dateSelector    string
}

// exportedPost is one section of the export page.
type exportedPost struct {
	index   int
	date    time.Time
	dated   bool
	section *html.Node
}

func (p exportedPost) filename() string {
	if !p.dated {
		return fmt.Sprintf("unknown_%d.html", p.index)
	}
	return fmt.Sprintf("%s_%d.html", p.date.Format("20060102_150405"), p.index)
}

func (p exportedPost) title() string {
	if !p.dated {
		return "unknown_date"
	}
	return p.date.Format(isoLayout)
}

// extractPosts writes one file per post section of opts.src into opts.out.
func extractPosts(opts extractOpts) (*report, error) {
	data, err := os.ReadFile(opts.src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoInput, err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	sectionSel, err := selector(opts.sectionSelector)
	if err != nil {
		return nil, err
	}
	dateSel, err := selector(opts.dateSelector)
	if err != nil {
		return nil, err
	}

	sections := cascadia.QueryAll(doc, sectionSel)
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w in %s", errNoSections, opts.src)
	}

	posts := make([]exportedPost, 0, len(sections))
	for i, sec := range sections {
		p := exportedPost{index: i, section: sec}
		if d := queryFirst(sec, dateSel); d != nil {
			p.date, p.dated = parseLooseDate(dom.CollectText(d))
		}
		posts = append(posts, p)
	}
	sortPosts(posts, opts.descending)

	root := opts.archiveRoot
	if root == "" {
		root = filepath.Dir(filepath.Dir(filepath.Dir(opts.src)))
	}

	rep := newReport("extract")
	for _, p := range posts {
		name := p.filename()
		copied := copyPostMedia(p.section, root, opts.out)
		body := renderNode(p.section)
		out := fmt.Sprintf(postTemplate, html.EscapeString(p.title()), body)
		if err := writeFileAtomic(filepath.Join(opts.out, name), []byte(out)); err != nil {
			rep.fail(name, err)
			continue
		}
		if copied > 0 {
			fmt.Fprintf(verboseOut, "  %s: copied %d media files\n", name, copied)
		}
		rep.done(name, true)
	}
	fmt.Fprintf(logOut, "Wrote %d post files to %s\n", rep.changed, opts.out)
	return rep, nil
}

// sortPosts orders dated posts by time (ties by encounter index) and puts
// undated posts last in encounter order.
func sortPosts(posts []exportedPost, descending bool) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if a.dated != b.dated {
			return a.dated
		}
		if !a.dated || a.date.Equal(b.date) {
			return a.index < b.index
		}
		if descending {
			return a.date.After(b.date)
		}
		return a.date.Before(b.date)
	})
}

const archiveMediaMarker = "posts/media/"

// copyPostMedia copies every local posts/media/ file referenced under sec
// into out/media/ and points the attribute at the copy. References whose
// source file is missing are left unchanged.
func copyPostMedia(sec *html.Node, archiveRoot, out string) int {
	copied := 0
	for _, n := range dom.AllNodes(sec) {
		if n.Type != html.ElementNode {
			continue
		}
		for _, key := range []string{"src", "href"} {
			val, ok := dom.GetAttribute(n, key)
			if !ok || isAbsoluteURL(val) {
				continue
			}
			_, remainder, found := strings.Cut(val, archiveMediaMarker)
			if !found || remainder == "" {
				continue
			}
			srcFile := filepath.Join(archiveRoot, filepath.FromSlash(val))
			if !fileExists(srcFile) {
				continue
			}
			dst := filepath.Join(out, "media", filepath.FromSlash(remainder))
			if err := copyFile(srcFile, dst); err != nil {
				fmt.Fprintf(logOut, "Warning: copying %s: %v\n", val, err)
				continue
			}
			setAttr(n, key, "media/"+remainder)
			copied++
		}
	}
	return copied
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
