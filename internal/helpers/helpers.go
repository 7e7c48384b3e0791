package helpers

import (
	"crypto/rand"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ImageExtensions lists the file extensions accepted for upload,
// lowercase with leading dot.
var ImageExtensions = map[string]bool{
	".bmp":  true,
	".gif":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// HasImageExt reports whether the path (or URL) carries a recognized
// image extension.
func HasImageExt(path string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsURL reports whether s is an absolute http(s) URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// AppendRandomTrailer returns data with 16 random bytes appended. Image
// hosts deduplicate by content hash; the trailer makes each upload unique
// without affecting how the image decodes.
func AppendRandomTrailer(data []byte) ([]byte, error) {
	trailer := make([]byte, 16)
	if _, err := rand.Read(trailer); err != nil {
		return nil, fmt.Errorf("generating random trailer: %w", err)
	}
	out := make([]byte, 0, len(data)+len(trailer))
	out = append(out, data...)
	out = append(out, trailer...)
	return out, nil
}

// BytesToSize converts a byte count into a human-readable string (KB, MB, GB, etc.).
func BytesToSize(bytes uint64) string {
	sizes := []string{"B", "KB", "MB", "GB", "TB"}
	if bytes == 0 {
		return "0B"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1 // Handle very large sizes
	}
	return fmt.Sprintf("%.2f%s", float64(bytes)/math.Pow(1024, float64(i)), sizes[i])
}

// CheckAndMakeDir ensures a directory exists, creating it if necessary.
// Uses standard directory permissions (0700).
func CheckAndMakeDir(dir string) bool {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		log.WithError(err).Errorf("Error creating directory %s", dir)
		return false
	}
	return true
}
