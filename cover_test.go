package main

import (
	"bytes"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
)

func TestGenerateCover(t *testing.T) {
	a, err := generateCover("My Diary", 12, "2019 - 2021")
	if err != nil {
		t.Fatal(err)
	}
	w, h, format := imageSize(t, a)
	if w != coverWidth || h != coverHeight || format != "png" {
		t.Errorf("cover is %dx%d %s", w, h, format)
	}

	again, err := generateCover("My Diary", 12, "2019 - 2021")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, again) {
		t.Error("same title gave different covers")
	}

	other, err := generateCover("Another Diary", 12, "2019 - 2021")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, other) {
		t.Error("different titles gave the same cover")
	}
}

func TestCoverSubtitle(t *testing.T) {
	tests := []struct {
		n     int
		years string
		want  string
	}{
		{1, "", "1 entry"},
		{3, "2020", "3 entries  2020"},
		{0, "", "0 entries"},
	}
	for _, tt := range tests {
		if got := coverSubtitle(tt.n, tt.years); got != tt.want {
			t.Errorf("coverSubtitle(%d, %q) = %q, want %q", tt.n, tt.years, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	face, err := loadFace(gobold.TTF, 72)
	if err != nil {
		t.Fatal(err)
	}
	lines := wrapText("a rather long diary title that cannot fit on one line", face, 600)
	if len(lines) < 2 {
		t.Fatalf("lines = %q", lines)
	}
	for _, l := range lines {
		if l == "" {
			t.Errorf("empty line in %q", lines)
		}
	}
	if got := wrapText("", face, 600); len(got) != 1 {
		t.Errorf("empty title: %q", got)
	}
}
