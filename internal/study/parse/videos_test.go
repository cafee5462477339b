package parse_test

import (
	"testing"

	"github.com/onyx-team/studymate/internal/study/parse"
)

func TestVideos(t *testing.T) {
	text := `Here are some videos:
[1]
Linear Algebra Basics
https://youtube.com/watch?v=ABC123&t=5
[2]
Matrix Multiplication
https://youtu.be/XYZ789?foo=1
[3]
Vector Spaces
https://example.com/videos/42`

	entries, dropped := parse.Videos(text)

	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	if entries[0].Title != "Linear Algebra Basics" {
		t.Errorf("title = %q, want %q", entries[0].Title, "Linear Algebra Basics")
	}
	if entries[0].VideoID != "ABC123" {
		t.Errorf("video_id = %q, want %q", entries[0].VideoID, "ABC123")
	}
	if entries[1].VideoID != "XYZ789" {
		t.Errorf("video_id = %q, want %q", entries[1].VideoID, "XYZ789")
	}
	if entries[2].VideoID != "" {
		t.Errorf("video_id = %q, want empty for unknown host", entries[2].VideoID)
	}
}

func TestVideos_ContentBeforeFirstMarkerDiscarded(t *testing.T) {
	text := "Intro line\nAnother line\n[1]\nTitle\nhttps://youtu.be/AAA"

	entries, _ := parse.Videos(text)

	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Title != "Title" {
		t.Errorf("title = %q, want %q", entries[0].Title, "Title")
	}
}

func TestVideos_ShortEntriesDropped(t *testing.T) {
	text := "[1]\nOnly a title\n[2]\nGood Title\nhttps://youtu.be/BBB"

	entries, dropped := parse.Videos(text)

	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].VideoID != "BBB" {
		t.Errorf("video_id = %q, want %q", entries[0].VideoID, "BBB")
	}
}

func TestVideos_Total(t *testing.T) {
	inputs := []string{"", "no markers here", "[1]", "[]\n\n\n", "[1][2][3]"}

	for _, input := range inputs {
		entries, _ := parse.Videos(input)
		if len(entries) != 0 {
			t.Errorf("Videos(%q) = %d entries, want 0", input, len(entries))
		}
	}
}
