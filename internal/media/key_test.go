package media

import "testing"

func TestExtractKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		url     string
		wantKey string
		wantOK  bool
	}{
		{
			"versioned upload url",
			"https://res.cloudinary.com/demo/image/upload/v1712345678/just_gold/products/abc123.png",
			"just_gold/products/abc123",
			true,
		},
		{
			"no version segment",
			"https://res.cloudinary.com/demo/image/upload/just_gold/products/abc123.jpg",
			"just_gold/products/abc123",
			true,
		},
		{
			"video asset",
			"https://res.cloudinary.com/demo/video/upload/v1700000000/just_gold/products/videos/clip.mp4",
			"just_gold/products/videos/clip",
			true,
		},
		{
			"query string stripped",
			"https://res.cloudinary.com/demo/image/upload/v1/just_gold/products/a.png?w=200",
			"just_gold/products/a",
			true,
		},
		{
			"no extension",
			"https://res.cloudinary.com/demo/image/upload/v99/just_gold/products/raw",
			"just_gold/products/raw",
			true,
		},
		{
			"dot in folder only",
			"https://res.cloudinary.com/demo/image/upload/v1/just.gold/raw",
			"just.gold/raw",
			true,
		},
		{"no marker", "https://example.com/some/image.png", "", false},
		{"marker at end", "https://res.cloudinary.com/demo/image/upload/", "", false},
		{"version only", "https://res.cloudinary.com/demo/image/upload/v123", "", false},
		{"empty input", "", "", false},
		{"whitespace input", "   ", "", false},
		{"garbage input", "not a url at all", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, ok := ExtractKey(tc.url)
			if ok != tc.wantOK {
				t.Fatalf("ExtractKey(%q) ok = %v, want %v", tc.url, ok, tc.wantOK)
			}
			if key != tc.wantKey {
				t.Fatalf("ExtractKey(%q) = %q, want %q", tc.url, key, tc.wantKey)
			}
		})
	}
}

func TestIsVideo(t *testing.T) {
	t.Parallel()

	if !IsVideo("https://res.cloudinary.com/demo/video/upload/just_gold/products/videos/clip.mp4") {
		t.Fatal("expected video path to be detected")
	}
	if IsVideo("https://res.cloudinary.com/demo/image/upload/just_gold/products/a.png") {
		t.Fatal("image path should not be detected as video")
	}
}
