package main

import (
	"archive/zip"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// findZipFile reads the contents of a file from a zip reader by name.
func findZipFile(zr *zip.ReadCloser, name string) string {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return ""
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return ""
			}
			return string(data)
		}
	}
	return ""
}

func setupDiary(t *testing.T) (site, articles string) {
	t.Helper()
	site = t.TempDir()
	articles = filepath.Join(site, "articles")
	writeFile(t, filepath.Join(articles, "article_fb_20210715_1.html"), homeArticle("Mid July", "2021-07-15 09:00:00", "third post"))
	writeFile(t, filepath.Join(articles, "article_fb_20210601_0.html"), articlePage("June",
		`<div class="_a72d">2021-06-01 09:00:00</div><p>first post</p><img src="media/a.png">`+
			`<div class="img-gallery"><a href="articles/media/x/b.png" class="img-thumb"><img src="articles/media/x/b.png"></a></div>`+
			`<img src="https://cdn.example.com/remote.jpg"><video src="https://v.example/v.mp4"></video>`))
	writeFile(t, filepath.Join(articles, "article_2019_trip.html"), homeArticle("Trip", "2019-03-02", "older post"))
	writeBytes(t, filepath.Join(articles, "media", "a.png"), makePNG(20, 20, solidRed))
	writeBytes(t, filepath.Join(articles, "media", "x", "b.png"), makePNG(30, 30, solidRed))
	return site, articles
}

func TestLoadDiary_Order(t *testing.T) {
	_, articles := setupDiary(t)
	rep := newReport("test")
	entries, err := loadDiary(newDirStore(articles), testContainer(), rep)
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	if diff := cmp.Diff([]string{"Trip", "June", "Mid July"}, titles); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if got := yearSpan(entries); got != "2019 - 2021" {
		t.Errorf("yearSpan = %q", got)
	}
}

func TestYearSpan(t *testing.T) {
	d := func(y int) diaryEntry { return diaryEntry{Date: time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)} }
	tests := []struct {
		entries []diaryEntry
		want    string
	}{
		{nil, ""},
		{[]diaryEntry{{Date: epochFallback}}, ""},
		{[]diaryEntry{d(2020), {Date: epochFallback}}, "2020"},
		{[]diaryEntry{d(2022), d(2018), d(2020)}, "2018 - 2022"},
	}
	for _, tt := range tests {
		if got := yearSpan(tt.entries); got != tt.want {
			t.Errorf("yearSpan = %q, want %q", got, tt.want)
		}
	}
}

func TestExportDiary_Markdown(t *testing.T) {
	quietLogs(t)
	site, articles := setupDiary(t)
	out := filepath.Join(site, "diary.md")

	rep, err := exportDiary(newDirStore(articles), exportOpts{
		format:    formatMarkdown,
		output:    out,
		container: testContainer(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.changed != 3 {
		t.Errorf("report = %s", rep)
	}

	md := readFile(t, out)
	for _, s := range []string{"# Trip\n\n*2019.03.02*\n\n", "# June\n\n*2021.06.01*\n\n", "first post", "\n\n---\n\n"} {
		if !strings.Contains(md, s) {
			t.Errorf("markdown lacks %q:\n%s", s, md)
		}
	}
	if i, j, k := strings.Index(md, "# Trip"), strings.Index(md, "# June"), strings.Index(md, "# Mid July"); !(i < j && j < k) {
		t.Errorf("entries out of order:\n%s", md)
	}
	if !strings.HasSuffix(md, "\n") || strings.HasSuffix(md, "\n\n") {
		t.Error("document should end with exactly one newline")
	}
}

func TestEntryToMarkdown(t *testing.T) {
	got, err := entryToMarkdown(diaryEntry{
		Title:   "Cats",
		Date:    epochFallback,
		Content: `<p>Hello <strong>world</strong></p><img src="data:image/png;base64,AAAA" alt="cat">`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "# Cats\n\nHello **world**") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "[Image: cat]") || strings.Contains(got, "base64") {
		t.Errorf("data URI image not replaced: %q", got)
	}
}

func TestExportDiary_EPUB(t *testing.T) {
	quietLogs(t)
	site, articles := setupDiary(t)
	out := filepath.Join(site, "diary.epub")

	_, err := exportDiary(newDirStore(articles), exportOpts{
		format:     formatEPUB,
		output:     out,
		title:      "My Diary",
		author:     "Yao",
		container:  testContainer(),
		imageRoots: []string{articles, site},
	})
	if err != nil {
		t.Fatal(err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("not a valid zip: %v", err)
	}
	defer zr.Close()
	files := map[string]bool{}
	for _, f := range zr.File {
		files[f.Name] = true
	}
	for _, name := range []string{
		"EPUB/xhtml/cover.xhtml",
		"EPUB/xhtml/contents.xhtml",
		"EPUB/xhtml/entry0001.xhtml",
		"EPUB/xhtml/entry0002.xhtml",
		"EPUB/xhtml/entry0003.xhtml",
		"EPUB/images/cover.png",
		"EPUB/images/img0001.png",
		"EPUB/images/img0002.png",
	} {
		if !files[name] {
			t.Errorf("missing %s", name)
		}
	}
	if files["EPUB/images/img0003.jpg"] {
		t.Error("remote image embedded")
	}

	toc := findZipFile(zr, "EPUB/xhtml/contents.xhtml")
	for _, s := range []string{"entry0001.xhtml", "Trip", "2019.03.02", "Mid July"} {
		if !strings.Contains(toc, s) {
			t.Errorf("contents page lacks %q", s)
		}
	}

	june := findZipFile(zr, "EPUB/xhtml/entry0002.xhtml")
	for _, s := range []string{"<h1>June</h1>", `<p class="entry-date">2021.06.01</p>`, "img0001.png", "img0002.png", `<a href="https://v.example/v.mp4">[video]</a>`} {
		if !strings.Contains(june, s) {
			t.Errorf("entry lacks %q:\n%s", s, june)
		}
	}
	for _, s := range []string{"cdn.example.com", "articles/media/x/b.png"} {
		if strings.Contains(june, s) {
			t.Errorf("entry still references %q", s)
		}
	}
}

func TestExportDiary_Errors(t *testing.T) {
	quietLogs(t)
	dir := t.TempDir()
	_, err := exportDiary(newDirStore(dir), exportOpts{format: "pdf", container: testContainer()})
	if !errors.Is(err, errUnknownFormat) {
		t.Errorf("err = %v, want errUnknownFormat", err)
	}
	_, err = exportDiary(newDirStore(dir), exportOpts{format: formatMarkdown, output: filepath.Join(dir, "x.md"), container: testContainer()})
	if !errors.Is(err, errNoInput) {
		t.Errorf("err = %v, want errNoInput", err)
	}
}
