package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"go-hammy-upload/internal/api"
	"go-hammy-upload/internal/format"
	"go-hammy-upload/internal/helpers"
	"go-hammy-upload/internal/models"
	"go-hammy-upload/internal/resize"
)

var (
	// ErrNoItems means nothing uploadable could be enumerated from the
	// caller's arguments.
	ErrNoItems = errors.New("no compatible files or URLs")
	// ErrAborted means the remaining queue was dropped after a fatal
	// authentication failure.
	ErrAborted = errors.New("run aborted")
)

// Uploader is the single-call upload capability the pipeline drives.
// *api.Client satisfies it; tests substitute fakes.
type Uploader interface {
	UploadFile(filename string, data []byte) (models.UploadResponse, error)
	UploadURLSource(source string) (models.UploadResponse, error)
}

// Fetcher pulls a remote image into memory. It is only consulted when a
// URL item needs a local transform before the upload.
type Fetcher interface {
	Fetch(url string) ([]byte, error)
}

// Sink is one destination for the joined, formatted output.
type Sink interface {
	Name() string
	Write(text string) error
}

// ConfirmFunc answers an interactive yes/no question. Batch callers
// inject an always-yes or always-no policy.
type ConfirmFunc func(question string) bool

// Options are the per-run knobs collected from flags.
type Options struct {
	Width    int // target resize width; 0 means not configured
	Spec     format.Spec
	Single   bool
	Unique   bool // append a random trailer to defeat host-side dedupe
	MaxBytes int  // service payload cap; 0 uses resize.MaxUploadBytes
}

// Summary is the terminal report of one run.
type Summary struct {
	Enumerated int
	Succeeded  int
	Failed     int
	Skipped    int
	Aborted    bool
}

// Pipeline walks the caller's sources through enumerate, preflight,
// upload, format and emit. Execution is strictly sequential: results
// come back in input order no matter how the network behaves.
type Pipeline struct {
	Uploader Uploader
	Fetcher  Fetcher // optional; enables resize/unique for URL items
	Confirm  ConfirmFunc
	Sinks    []Sink
	Progress io.Writer // optional live status line
	Options  Options
}

// Run processes all sources and emits formatted links to every sink.
// The returned error is non-nil only for fatal conditions (nothing
// enumerated, or an authentication abort); per-item failures are
// reported in the summary and the results.
func (p *Pipeline) Run(sources []string) (Summary, []models.UploadResult, error) {
	var summary Summary

	items := p.Enumerate(sources)
	summary.Enumerated = len(items)
	if len(items) == 0 {
		return summary, nil, ErrNoItems
	}

	results := make([]models.UploadResult, 0, len(items))
	for i, item := range items {
		if p.Progress != nil {
			fmt.Fprintf(p.Progress, "Uploading %d/%d: %s\n", i+1, len(items), item.Source)
		}

		res, fatal := p.processItem(item)
		results = append(results, res)

		switch {
		case res.OK:
			summary.Succeeded++
		case res.Skipped:
			summary.Skipped++
			log.Warnf("Skipped %s: %s", item.Source, res.ErrorDetail)
		default:
			summary.Failed++
			log.Errorf("Upload failed for %s: %s", item.Source, res.ErrorDetail)
		}

		if fatal {
			summary.Aborted = true
			remaining := len(items) - i - 1
			if remaining > 0 {
				log.Errorf("Authentication failed; aborting %d remaining upload(s).", remaining)
			}
			return summary, results, fmt.Errorf("%w: %s", ErrAborted, res.ErrorDetail)
		}
	}

	p.emit(results)
	return summary, results, nil
}

// Enumerate expands the caller-provided sources into upload items:
// folders recurse (traversal order), URL-shaped strings become URL
// items, everything else is treated as a file path. Strings without a
// recognized image extension are dropped with a warning.
func (p *Pipeline) Enumerate(sources []string) []models.UploadItem {
	var items []models.UploadItem

	for _, src := range sources {
		if helpers.IsURL(src) {
			items = append(items, models.UploadItem{Kind: models.KindURL, Source: src})
			continue
		}

		info, statErr := os.Stat(src)
		if statErr == nil && info.IsDir() {
			items = append(items, enumerateFolder(src)...)
			continue
		}

		if !helpers.HasImageExt(src) {
			log.Warnf("Skipping %s: not a folder, URL, or recognized image file", src)
			continue
		}

		item := models.UploadItem{Kind: models.KindFile, Source: src}
		if statErr == nil {
			item.SizeBytes = info.Size()
		}
		items = append(items, item)
	}

	return items
}

func enumerateFolder(dir string) []models.UploadItem {
	var items []models.UploadItem
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.WithError(err).Warnf("Error walking %s", path)
			return nil
		}
		if d.IsDir() || !helpers.HasImageExt(path) {
			return nil
		}
		item := models.UploadItem{Kind: models.KindFile, Source: path}
		if info, infoErr := d.Info(); infoErr == nil {
			item.SizeBytes = info.Size()
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		log.WithError(err).Warnf("Error walking folder %s", dir)
	}
	return items
}

// processItem performs preflight and exactly one upload call for the
// item. The bool is true for authentication failures, which are fatal
// for the whole run.
func (p *Pipeline) processItem(item models.UploadItem) (models.UploadResult, bool) {
	var resp models.UploadResponse
	var err error

	switch {
	case item.Kind == models.KindURL && p.Fetcher != nil && (p.Options.Width > 0 || p.Options.Unique):
		// Local transforms require the bytes, so the remote image is
		// fetched and uploaded like a file.
		var data []byte
		data, err = p.Fetcher.Fetch(item.Source)
		if err != nil {
			return models.UploadResult{Item: item, ErrorDetail: err.Error()}, false
		}
		item.SizeBytes = int64(len(data))
		var skipped bool
		data, skipped, err = p.prepare(&item, data)
		if skipped {
			return models.UploadResult{Item: item, Skipped: true, ErrorDetail: err.Error()}, false
		}
		if err != nil {
			return models.UploadResult{Item: item, ErrorDetail: err.Error()}, false
		}
		resp, err = p.Uploader.UploadFile(urlFilename(item.Source), data)
	case item.Kind == models.KindURL:
		resp, err = p.Uploader.UploadURLSource(item.Source)
	default:
		var data []byte
		var skipped bool
		data, skipped, err = p.preflight(&item)
		if skipped {
			return models.UploadResult{Item: item, Skipped: true, ErrorDetail: err.Error()}, false
		}
		if err != nil {
			return models.UploadResult{Item: item, ErrorDetail: err.Error()}, false
		}
		resp, err = p.Uploader.UploadFile(filepath.Base(item.Source), data)
	}

	if err != nil {
		return models.UploadResult{Item: item, ErrorDetail: err.Error()}, errors.Is(err, api.ErrUnauthorized)
	}
	return models.ResultFromResponse(item, resp), false
}

// preflight reads the file and applies the resize policy. The skipped
// return is true when the user declined the resize.
func (p *Pipeline) preflight(item *models.UploadItem) (data []byte, skipped bool, err error) {
	data, err = os.ReadFile(item.Source)
	if err != nil {
		return nil, false, fmt.Errorf("reading file: %w", err)
	}
	item.SizeBytes = int64(len(data))
	return p.prepare(item, data)
}

// prepare applies the resize policy to in-memory image bytes: images
// under the service cap are passed through untouched; oversized images
// are resized to the configured width, or after confirmation to the
// default width, halving until they fit.
func (p *Pipeline) prepare(item *models.UploadItem, data []byte) (_ []byte, skipped bool, err error) {
	maxBytes := p.Options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = resize.MaxUploadBytes
	}

	if len(data) > maxBytes {
		if p.Options.Width > 0 {
			data, err = resize.Resize(data, p.Options.Width)
		} else {
			question := fmt.Sprintf("%s is %s, over the %s upload limit. Resize before upload?",
				filepath.Base(item.Source),
				helpers.BytesToSize(uint64(len(data))),
				helpers.BytesToSize(uint64(maxBytes)))
			if p.Confirm == nil || !p.Confirm(question) {
				return nil, true, fmt.Errorf("over the %s upload limit, resize declined", helpers.BytesToSize(uint64(maxBytes)))
			}
			data, err = resize.FitUnderCap(data, resize.DefaultWidth, maxBytes)
		}
		if err != nil {
			return nil, false, fmt.Errorf("resize failed: %w", err)
		}
		if w, h, dimErr := resize.Dimensions(data); dimErr == nil {
			item.Width, item.Height = w, h
		}
	}

	if p.Options.Unique {
		data, err = helpers.AppendRandomTrailer(data)
		if err != nil {
			return nil, false, err
		}
	}

	return data, false, nil
}

// urlFilename derives an upload filename from the last path segment of
// the source URL.
func urlFilename(source string) string {
	u, err := url.Parse(source)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "image"
	}
	return path.Base(u.Path)
}

// emit formats the successful results in order and writes the joined
// text once to every active sink. Nothing is written when no upload
// succeeded, so a requested clipboard is never clobbered by a failed run.
func (p *Pipeline) emit(results []models.UploadResult) {
	var lines []string
	for _, res := range results {
		if res.OK {
			lines = append(lines, format.Render(res, p.Options.Spec))
		}
	}
	if len(lines) == 0 {
		return
	}

	joined := format.Join(lines, p.Options.Single)
	for _, sink := range p.Sinks {
		if err := sink.Write(joined); err != nil {
			log.WithError(err).Errorf("Error writing links to %s", sink.Name())
		} else {
			log.Debugf("Wrote %d link(s) to %s", len(lines), sink.Name())
		}
	}
}
