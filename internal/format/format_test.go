package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hammy-upload/internal/models"
)

var fullResult = models.UploadResult{
	URL:       "https://hamster.is/images/cat.png",
	ViewerURL: "https://hamster.is/image/AbC1",
	MediumURL: "https://hamster.is/images/cat.md.png",
	ThumbURL:  "https://hamster.is/images/cat.th.png",
	IDEncoded: "AbC1",
	OK:        true,
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		res  models.UploadResult
		want string
	}{
		{"plain", Plain, fullResult, "https://hamster.is/images/cat.png"},
		{"bbcode", BBCode, fullResult, "[img]https://hamster.is/images/cat.png[/img]"},
		{"imgnm", ImgNM, fullResult, "[imgnm]https://hamster.is/images/cat.png[/imgnm]"},
		{"medium", Medium, fullResult, "https://hamster.is/images/cat.md.png"},
		{"thumbs", Thumbs, fullResult, "https://hamster.is/images/cat.th.png"},
		{
			"bbthumbs", BBThumbs, fullResult,
			"[url=https://hamster.is/image/AbC1][img]https://hamster.is/images/cat.th.png[/img][/url]",
		},
		{
			"medium-thumbs", MediumThumbs, fullResult,
			"[url=https://hamster.is/image/AbC1][img]https://hamster.is/images/cat.md.png[/img][/url]",
		},
		{
			"medium falls back to canonical",
			Medium,
			models.UploadResult{URL: "https://hamster.is/images/min.png"},
			"https://hamster.is/images/min.png",
		},
		{
			"thumbs falls back to canonical",
			Thumbs,
			models.UploadResult{URL: "https://hamster.is/images/min.png"},
			"https://hamster.is/images/min.png",
		},
		{
			"bbthumbs without viewer or thumb falls back everywhere",
			BBThumbs,
			models.UploadResult{URL: "https://hamster.is/images/min.png"},
			"[url=https://hamster.is/images/min.png][img]https://hamster.is/images/min.png[/img][/url]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.res, tt.spec))
		})
	}
}

func TestRenderIsPure(t *testing.T) {
	for _, spec := range allSpecs {
		first := Render(fullResult, spec)
		second := Render(fullResult, spec)
		assert.Equal(t, first, second, "Render must be idempotent for %s", spec)
	}
}

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec("bbcode")
	require.NoError(t, err)
	assert.Equal(t, BBCode, spec)

	spec, err = ParseSpec("Medium-Thumbs")
	require.NoError(t, err)
	assert.Equal(t, MediumThumbs, spec)

	spec, err = ParseSpec("")
	require.NoError(t, err)
	assert.Equal(t, Plain, spec, "empty format defaults to plain")

	_, err = ParseSpec("fancy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plain", "error should list valid names")
}

func TestJoin(t *testing.T) {
	lines := []string{"[img]a[/img]", "[img]b[/img]"}
	assert.Equal(t, "[img]a[/img]\n[img]b[/img]", Join(lines, false))
	assert.Equal(t, "[img]a[/img][img]b[/img]", Join(lines, true))
	assert.Equal(t, "", Join(nil, false))
}
