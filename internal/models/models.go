package models

type (
	Config struct {
		// Connection/Auth
		ApiKey string `toml:"ApiKey"`

		// Paths
		TxtPath string `toml:"TxtPath"`

		// Uploader Behavior
		ApiClientTimeoutSec int `toml:"ApiClientTimeoutSec"`

		// Other
		LogApiRequests bool `toml:"LogApiRequests"`
	}

	// SourceKind distinguishes local files from remote URLs.
	SourceKind string

	// UploadItem is one unit of work: a file path or a remote URL slated
	// for upload. Items are created during enumeration and consumed once.
	UploadItem struct {
		Kind      SourceKind
		Source    string // file path or URL
		SizeBytes int64  // file items only, filled at enumeration
		Width     int    // resolved during preflight when the image is decoded
		Height    int
	}

	// UploadResult is the outcome of exactly one upload attempt.
	// Failed results carry ErrorDetail and are excluded from formatted
	// output but never dropped from reporting.
	UploadResult struct {
		Item        UploadItem
		URL         string // canonical link
		IDEncoded   string
		ViewerURL   string // host page wrapping the image
		DisplayURL  string
		MediumURL   string // optional variant, may be empty
		ThumbURL    string // optional variant, may be empty
		OK          bool
		Skipped     bool // user declined resize, upload never attempted
		ErrorDetail string
	}

	// Api Responses (hamster.is /api/1/upload)
	UploadResponse struct {
		StatusCode int       `json:"status_code"`
		StatusTxt  string    `json:"status_txt"`
		Image      ImageInfo `json:"image"`
		Error      *ApiError `json:"error,omitempty"`
	}

	ImageInfo struct {
		URL        string       `json:"url"`
		IDEncoded  string       `json:"id_encoded"`
		URLViewer  string       `json:"url_viewer"`
		DisplayURL string       `json:"display_url"`
		Width      int          `json:"width"`
		Height     int          `json:"height"`
		SizeBytes  int64        `json:"size"`
		Medium     *LinkVariant `json:"medium,omitempty"`
		Thumb      *LinkVariant `json:"thumb,omitempty"`
	}

	LinkVariant struct {
		URL string `json:"url"`
	}

	ApiError struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
)

const (
	KindFile SourceKind = "file"
	KindURL  SourceKind = "url"
)

// ResultFromResponse converts a successful API response into an
// UploadResult for the given item. Optional link variants are carried
// through only when the service supplied them.
func ResultFromResponse(item UploadItem, resp UploadResponse) UploadResult {
	res := UploadResult{
		Item:       item,
		URL:        resp.Image.URL,
		IDEncoded:  resp.Image.IDEncoded,
		ViewerURL:  resp.Image.URLViewer,
		DisplayURL: resp.Image.DisplayURL,
		OK:         true,
	}
	if resp.Image.Medium != nil {
		res.MediumURL = resp.Image.Medium.URL
	}
	if resp.Image.Thumb != nil {
		res.ThumbURL = resp.Image.Thumb.URL
	}
	return res
}
