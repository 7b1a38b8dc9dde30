package analysis

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// AnalyzePath is the endpoint that accepts image uploads.
const AnalyzePath = "/analyze-image"

// HTTPAnalyzer calls the analysis service over HTTP with a multipart upload.
type HTTPAnalyzer struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewHTTPAnalyzer creates an analyzer for the service at baseURL.
func NewHTTPAnalyzer(baseURL string, timeout time.Duration, log zerolog.Logger) *HTTPAnalyzer {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &HTTPAnalyzer{client: c, log: log}
}

var extPattern = regexp.MustCompile(`\.(\w+)$`)

// Analyze uploads the image at req.ImageURI (a file:// URI or a local path)
// with field "file", one "categories" field per known label, and
// "allow_new_categories".
func (a *HTTPAnalyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	path, err := localPath(req.ImageURI)
	if err != nil {
		return nil, &Error{Kind: KindInput, Err: err}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindInput, Err: err}
	}
	defer f.Close()

	filename, contentType := fileMeta(path)

	form := url.Values{}
	for _, c := range NormalizeLabels(req.Categories) {
		form.Add("categories", c)
	}
	form.Set("allow_new_categories", strconv.FormatBool(req.AllowNewCategories))

	a.log.Debug().
		Str("uri", req.ImageURI).
		Str("filename", filename).
		Strs("categories", form["categories"]).
		Bool("allow_new_categories", req.AllowNewCategories).
		Msg("sending analysis request")

	resp, err := a.client.R().
		SetContext(ctx).
		SetMultipartField("file", filename, contentType, f).
		SetFormDataFromValues(form).
		Post(AnalyzePath)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &Error{Kind: KindStatus, Status: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}

	res, err := DecodeResult(resp.Body())
	if err != nil {
		return nil, err
	}

	a.log.Debug().
		Str("category", res.Category).
		Int("events", len(res.ExtractedEvents)).
		Int("embedding_dims", len(res.Embedding)).
		Msg("analysis complete")
	return res, nil
}

// localPath resolves a file:// URI or plain path.
func localPath(uri string) (string, error) {
	if uri == "" {
		return "", fmt.Errorf("image uri is required")
	}
	if !strings.Contains(uri, "://") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse image uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported image uri scheme %q", u.Scheme)
	}
	return u.Path, nil
}

// fileMeta derives the upload filename and content type from the path.
// Unknown extensions are sent as image/jpeg.
func fileMeta(path string) (filename, contentType string) {
	filename = filepath.Base(path)
	if filename == "" || filename == "." || filename == "/" {
		filename = "upload.jpg"
	}
	contentType = "image/jpeg"
	if m := extPattern.FindStringSubmatch(filename); m != nil {
		contentType = "image/" + strings.ToLower(m[1])
	}
	return filename, contentType
}
