// Exporting the diary as a single book.
package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/andybalholm/cascadia"
)

// diaryEntry is one article prepared for export.
type diaryEntry struct {
	Name  string
	Title string
	Date  time.Time
	// Content is the inner markup of the content container, else of body.
	Content string
}

// dated reports whether the entry has a real date.
func (e diaryEntry) dated() bool {
	return !e.Date.Equal(epochFallback)
}

func readEntry(name string, data []byte, container cascadia.Matcher) (diaryEntry, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return diaryEntry{}, err
	}
	e := diaryEntry{Name: name, Title: articleTitle(doc, name), Date: articleDate(doc)}
	if inner, ok := containerInner(data, container); ok {
		e.Content = inner
	} else if span, ok := findElementSpan(data, bodySel); ok {
		e.Content = string(data[span.InnerStart:span.InnerEnd])
	}
	return e, nil
}

// loadDiary reads every article_ file, oldest first. Equal dates keep
// filename order.
func loadDiary(store ArticleStore, container cascadia.Matcher, rep *report) ([]diaryEntry, error) {
	names, err := store.List(anyArticleGlob)
	if err != nil {
		return nil, err
	}
	var entries []diaryEntry
	for _, name := range names {
		data, err := store.Read(name)
		if err != nil {
			rep.fail(name, err)
			continue
		}
		e, err := readEntry(name, data, container)
		if err != nil {
			rep.fail(name, err)
			continue
		}
		entries = append(entries, e)
		rep.done(name, true)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

// yearSpan is "2019" or "2019 - 2023" over the dated entries.
func yearSpan(entries []diaryEntry) string {
	first, last := 0, 0
	for _, e := range entries {
		if !e.dated() {
			continue
		}
		y := e.Date.Year()
		if first == 0 || y < first {
			first = y
		}
		if y > last {
			last = y
		}
	}
	switch {
	case first == 0:
		return ""
	case first == last:
		return fmt.Sprint(first)
	}
	return fmt.Sprintf("%d - %d", first, last)
}

const (
	formatEPUB     = "epub"
	formatMarkdown = "markdown"
)

type exportOpts struct {
	format    string
	output    string
	title     string
	author    string
	container cascadia.Matcher
	// imageRoots are tried in order to resolve local image paths.
	imageRoots []string
}

func defaultExportName(format string) string {
	if format == formatMarkdown {
		return "diary.md"
	}
	return "diary.epub"
}

// exportDiary writes all articles as one EPUB or Markdown file.
func exportDiary(store ArticleStore, opts exportOpts) (*report, error) {
	if opts.format != formatEPUB && opts.format != formatMarkdown {
		return nil, fmt.Errorf("%w %q (want epub or markdown)", errUnknownFormat, opts.format)
	}
	if opts.output == "" {
		opts.output = defaultExportName(opts.format)
	}

	rep := newReport("export " + opts.format)
	entries, err := loadDiary(store, opts.container, rep)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no %s files", errNoInput, anyArticleGlob)
	}

	switch opts.format {
	case formatEPUB:
		err = buildEpub(entries, opts)
	case formatMarkdown:
		var md string
		md, err = diaryToMarkdown(entries)
		if err == nil {
			err = writeFileAtomic(opts.output, []byte(md))
		}
	}
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(opts.output); err == nil {
		fmt.Fprintf(logOut, "Wrote %d entries to %s (%s)\n", len(entries), opts.output, humanSize(info.Size()))
	}
	return rep, nil
}
