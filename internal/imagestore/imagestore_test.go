package imagestore

import (
	"strings"
	"testing"
)

func TestIsValidImage(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"avatar.jpg", true},
		{"avatar.jpeg", true},
		{"avatar.png", true},
		{"avatar.gif", true},
		{"AVATAR.JPG", true},
		{"photo.with.dots.png", true},
		{"avatar.bmp", false},
		{"avatar.svg", false},
		{"script.exe", false},
		{"noextension", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := IsValidImage(tt.filename); got != tt.want {
				t.Errorf("IsValidImage(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestStorageKey(t *testing.T) {
	key := storageKey("Avatar.PNG")

	if !strings.HasPrefix(key, "profiles/") {
		t.Errorf("expected profiles/ prefix, got %q", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Errorf("expected lower-cased extension, got %q", key)
	}
	if key == storageKey("Avatar.PNG") {
		t.Error("expected unique keys for repeated uploads")
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.jpg", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"a.png", "image/png"},
		{"a.gif", "image/gif"},
		{"a.bin", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := contentType(tt.filename); got != tt.want {
			t.Errorf("contentType(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
