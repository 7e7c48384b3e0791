package helpers

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestHasImageExt(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"PNG lowercase", "cat.png", true},
		{"JPEG uppercase", "photo.JPEG", true},
		{"JPG mixed case", "Photo.JpG", true},
		{"GIF", "anim.gif", true},
		{"WebP", "pic.webp", true},
		{"BMP", "old.bmp", true},
		{"Text file", "notes.txt", false},
		{"No extension", "README", false},
		{"Dot only", "archive.", false},
		{"URL with extension", "https://example.com/a/b.png", true},
		{"URL without extension", "https://example.com/a/b", false},
		{"Nested path", filepath.Join("some", "dir", "img.jpeg"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasImageExt(tt.path); got != tt.want {
				t.Errorf("HasImageExt(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"HTTPS URL", "https://example.com/image.png", true},
		{"HTTP URL", "http://example.com/image.png", true},
		{"No scheme", "example.com/image.png", false},
		{"File path", "/home/user/image.png", false},
		{"Relative path", "images/cat.jpg", false},
		{"FTP scheme", "ftp://example.com/image.png", false},
		{"Scheme without host", "https://", false},
		{"Empty string", "", false},
		{"Windows path", `C:\Users\me\cat.png`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsURL(tt.input); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAppendRandomTrailer(t *testing.T) {
	data := []byte("some image bytes")

	out, err := AppendRandomTrailer(data)
	if err != nil {
		t.Fatalf("AppendRandomTrailer returned error: %v", err)
	}
	if len(out) != len(data)+16 {
		t.Errorf("trailer length = %d, want %d", len(out)-len(data), 16)
	}
	if !bytes.Equal(out[:len(data)], data) {
		t.Error("original payload was modified by AppendRandomTrailer")
	}

	// Two trailers for the same payload should differ.
	out2, err := AppendRandomTrailer(data)
	if err != nil {
		t.Fatalf("AppendRandomTrailer returned error: %v", err)
	}
	if bytes.Equal(out[len(data):], out2[len(data):]) {
		t.Error("two random trailers are identical")
	}
}

func TestBytesToSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes uint64
		want  string
	}{
		{"Zero bytes", 0, "0B"},
		{"Bytes", 500, "500.00B"},
		{"Kilobytes", 1024, "1.00KB"},
		{"Kilobytes fractional", 1536, "1.50KB"},
		{"Megabytes", 1024 * 1024, "1.00MB"},
		{"Megabytes fractional", 1024*1024 + 512*1024, "1.50MB"},
		{"Gigabytes", 1024 * 1024 * 1024, "1.00GB"},
		{"Terabytes", 1024 * 1024 * 1024 * 1024, "1.00TB"},
		{"Large Terabytes", 1536 * 1024 * 1024 * 1024, "1.50TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BytesToSize(tt.bytes)
			if got != tt.want {
				t.Errorf("BytesToSize(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestCheckAndMakeDir(t *testing.T) {
	baseTempDir := t.TempDir()

	tests := []struct {
		name       string
		dirToMake  string // Relative to baseTempDir
		wantResult bool
		wantExists bool
	}{
		{
			name:       "Create simple directory",
			dirToMake:  "new_dir",
			wantResult: true,
			wantExists: true,
		},
		{
			name:       "Create nested directory",
			dirToMake:  filepath.Join("nested", "dir", "to", "create"),
			wantResult: true,
			wantExists: true,
		},
		{
			name:       "Attempt to create directory that is a file",
			dirToMake:  "existing_file.txt",
			wantResult: false,
			wantExists: false,
		},
		{
			name:       "Directory already exists",
			dirToMake:  "already_exists",
			wantResult: true,
			wantExists: true,
		},
	}

	// Pre-create structures needed for certain tests
	preExistingDir := filepath.Join(baseTempDir, "already_exists")
	if err := os.Mkdir(preExistingDir, 0755); err != nil {
		t.Fatalf("Failed to pre-create directory %s: %v", preExistingDir, err)
	}
	preExistingFile := filepath.Join(baseTempDir, "existing_file.txt")
	if _, err := os.Create(preExistingFile); err != nil {
		t.Fatalf("Failed to pre-create file %s: %v", preExistingFile, err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fullPathToMake := filepath.Join(baseTempDir, tt.dirToMake)
			gotResult := CheckAndMakeDir(fullPathToMake)

			if gotResult != tt.wantResult {
				t.Errorf("CheckAndMakeDir(%q) = %v, want %v", fullPathToMake, gotResult, tt.wantResult)
			}

			_, err := os.Stat(fullPathToMake)
			gotExists := err == nil

			if gotExists != tt.wantExists {
				if tt.wantExists {
					t.Errorf("CheckAndMakeDir(%q) succeeded (%v) but directory does not exist", fullPathToMake, gotResult)
				} else {
					t.Errorf("CheckAndMakeDir(%q) failed (%v) but directory unexpectedly exists", fullPathToMake, gotResult)
				}
			}

			if tt.wantExists && gotExists {
				info, _ := os.Stat(fullPathToMake)
				if !info.IsDir() {
					t.Errorf("CheckAndMakeDir(%q) created something, but it's not a directory", fullPathToMake)
				}
			}
		})
	}
}
