package format

import (
	"fmt"
	"strings"

	"go-hammy-upload/internal/models"
)

// Spec is a named link-rendering template.
type Spec string

const (
	Plain        Spec = "plain"
	BBCode       Spec = "bbcode"
	BBThumbs     Spec = "bbthumbs"
	ImgNM        Spec = "imgnm"
	Medium       Spec = "medium"
	Thumbs       Spec = "thumbs"
	MediumThumbs Spec = "medium-thumbs"
)

var allSpecs = []Spec{Plain, BBCode, BBThumbs, ImgNM, Medium, Thumbs, MediumThumbs}

// Names returns the accepted --format values.
func Names() []string {
	names := make([]string, len(allSpecs))
	for i, s := range allSpecs {
		names[i] = string(s)
	}
	return names
}

// ParseSpec validates a user-supplied format name.
func ParseSpec(s string) (Spec, error) {
	if s == "" {
		return Plain, nil
	}
	for _, spec := range allSpecs {
		if string(spec) == strings.ToLower(s) {
			return spec, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (valid: %s)", s, strings.Join(Names(), ", "))
}

// Render maps one upload result onto the template. It is pure and total:
// any variant link the service did not supply falls back to the canonical
// URL, so rendering never fails.
func Render(res models.UploadResult, spec Spec) string {
	canonical := res.URL
	medium := fallback(res.MediumURL, canonical)
	thumb := fallback(res.ThumbURL, canonical)
	viewer := fallback(res.ViewerURL, canonical)

	switch spec {
	case BBCode:
		return fmt.Sprintf("[img]%s[/img]", canonical)
	case BBThumbs:
		return fmt.Sprintf("[url=%s][img]%s[/img][/url]", viewer, thumb)
	case ImgNM:
		return fmt.Sprintf("[imgnm]%s[/imgnm]", canonical)
	case Medium:
		return medium
	case Thumbs:
		return thumb
	case MediumThumbs:
		return fmt.Sprintf("[url=%s][img]%s[/img][/url]", viewer, medium)
	default:
		return canonical
	}
}

// Join assembles rendered lines for emission: one per line by default,
// plain concatenation when single-line output was requested.
func Join(lines []string, single bool) string {
	if single {
		return strings.Join(lines, "")
	}
	return strings.Join(lines, "\n")
}

func fallback(preferred, canonical string) string {
	if preferred != "" {
		return preferred
	}
	return canonical
}
