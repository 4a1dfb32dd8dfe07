package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var articleTitleSel = mustSelector("h1.article-title")

type emptyRule struct {
	container   cascadia.Matcher
	placeholder string
	minTextLen  int
}

// isEmptyPost reports whether a post carries the placeholder title, consists
// of nothing but the placeholder phrase, or has almost no text in its content
// container (or, lacking one, its first section).
func (r emptyRule) isEmptyPost(doc *html.Node) bool {
	if r.placeholder != "" {
		for _, sel := range []cascadia.Matcher{articleTitleSel, h2Sel} {
			if h := queryFirst(doc, sel); h != nil && strings.Contains(visibleText(h, ""), r.placeholder) {
				return true
			}
		}
	}
	content := queryFirst(doc, r.container)
	if content == nil {
		content = queryFirst(doc, sectionSel)
	}
	if content == nil {
		return false
	}
	if r.placeholder != "" && visibleText(content, " ") == collapseSpace(r.placeholder) {
		return true
	}
	text := strings.Join(textParts(content), "")
	return utf8.RuneCountInString(text) < r.minTextLen
}

// cleanEmpty moves empty article_fb_ posts to removed_empty_fb/. Files that
// cannot be read or parsed stay where they are.
func cleanEmpty(store ArticleStore, rule emptyRule) (*report, []string, error) {
	names, err := store.List(fbArticleGlob)
	if err != nil {
		return nil, nil, err
	}
	rep := newReport("clean-empty")
	var moved []string
	for _, name := range names {
		data, err := store.Read(name)
		if err != nil {
			rep.fail(name, err)
			continue
		}
		doc, err := parseDocument(data)
		if err != nil {
			rep.fail(name, err)
			continue
		}
		if !rule.isEmptyPost(doc) {
			rep.done(name, false)
			continue
		}
		if err := store.Move(name, removedEmptyDir); err != nil {
			rep.fail(name, err)
			continue
		}
		moved = append(moved, name)
		rep.done(name, true)
	}
	fmt.Fprintf(logOut, "Moved %d files to %s\n", len(moved), removedEmptyDir)
	for _, n := range moved {
		fmt.Fprintf(logOut, " - %s\n", n)
	}
	return rep, moved, nil
}
