package analysis

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("\xff\xd8\xff fake jpeg"), 0o644))
	return path
}

func TestHTTPAnalyzer_SendsMultipartUpload(t *testing.T) {
	type captured struct {
		path        string
		filename    string
		contentType string
		content     string
		categories  []string
		allowNew    string
	}
	got := make(chan captured, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)

		got <- captured{
			path:        r.URL.Path,
			filename:    hdr.Filename,
			contentType: hdr.Header.Get("Content-Type"),
			content:     string(data),
			categories:  r.MultipartForm.Value["categories"],
			allowNew:    r.FormValue("allow_new_categories"),
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"category":"Prescriptions","summary":"Amoxicillin 500mg","context_text":"","embedding":[1,2],"extracted_events":[]}`)
	}))
	defer srv.Close()

	img := writeImage(t, "rx.png")
	a := NewHTTPAnalyzer(srv.URL+"/", 5*time.Second, zerolog.Nop())

	res, err := a.Analyze(context.Background(), Request{
		ImageURI:           "file://" + img,
		Categories:         []string{"Prescriptions", "Lab Results", "Prescriptions"},
		AllowNewCategories: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Prescriptions", res.Category)
	assert.Equal(t, []float64{1, 2}, res.Embedding)

	c := <-got
	assert.Equal(t, AnalyzePath, c.path)
	assert.Equal(t, "rx.png", c.filename)
	assert.Equal(t, "image/png", c.contentType)
	assert.Equal(t, "\xff\xd8\xff fake jpeg", c.content)
	assert.Equal(t, []string{"Prescriptions", "Lab Results"}, c.categories)
	assert.Equal(t, "false", c.allowNew)
}

func TestHTTPAnalyzer_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(srv.URL, 5*time.Second, zerolog.Nop())
	_, err := a.Analyze(context.Background(), Request{ImageURI: writeImage(t, "scan.jpg")})
	require.Error(t, err)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindStatus, ae.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, ae.Status)
	assert.Equal(t, "model overloaded", ae.Body)
}

func TestHTTPAnalyzer_SchemaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"extracted_events":[{"title":"X","date":"2026-01-01","type":"party"}]}`)
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(srv.URL, 5*time.Second, zerolog.Nop())
	_, err := a.Analyze(context.Background(), Request{ImageURI: writeImage(t, "scan.jpg")})

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindSchema, ae.Kind)
}

func TestHTTPAnalyzer_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	a := NewHTTPAnalyzer(url, time.Second, zerolog.Nop())
	_, err := a.Analyze(context.Background(), Request{ImageURI: writeImage(t, "scan.jpg")})

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindTransport, ae.Kind)
}

func TestHTTPAnalyzer_InputErrors(t *testing.T) {
	a := NewHTTPAnalyzer("http://127.0.0.1:1", time.Second, zerolog.Nop())

	for _, uri := range []string{"", "https://example.com/a.jpg", filepath.Join(t.TempDir(), "missing.jpg")} {
		_, err := a.Analyze(context.Background(), Request{ImageURI: uri})
		var ae *Error
		require.ErrorAs(t, err, &ae, "uri %q", uri)
		assert.Equal(t, KindInput, ae.Kind, "uri %q", uri)
	}
}

func TestFileMeta(t *testing.T) {
	name, ct := fileMeta("/tmp/IMG_0001.HEIC")
	assert.Equal(t, "IMG_0001.HEIC", name)
	assert.Equal(t, "image/heic", ct)

	name, ct = fileMeta("/tmp/scan")
	assert.Equal(t, "scan", name)
	assert.Equal(t, "image/jpeg", ct)
}
