package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/support/retry"
)

var uniqueNamePattern = regexp.MustCompile(`^[0-9a-f-]{36}_\d+\.[a-z]+$`)

func TestUniqueName(t *testing.T) {
	now := time.Unix(1700000000, 0)
	name := UniqueName("Recu.JPEG", "image/jpeg", now)
	assert.Regexp(t, uniqueNamePattern, name)
	assert.True(t, strings.HasSuffix(name, "_1700000000.jpg"))

	assert.True(t, strings.HasSuffix(UniqueName("blob", "image/png", now), ".png"))
	assert.True(t, strings.HasSuffix(UniqueName("", "application/pdf", now), ".bin"))
	assert.NotEqual(t, UniqueName("a.png", "", now), UniqueName("a.png", "", now))
}

func TestCleanFolder(t *testing.T) {
	assert.Equal(t, "paiements", CleanFolder("paiements"))
	assert.Equal(t, "menu/plats", CleanFolder("../Menu/./plats/"))
	assert.Equal(t, "", CleanFolder("../.."))
}

func TestLocalUploaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	up, err := NewLocalUploader(dir, "/uploads/")
	require.NoError(t, err)
	assert.Equal(t, DriverLocal, up.Driver())

	asset, err := up.Upload(context.Background(), "paiements", "proof.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "paiements", asset.Folder)
	assert.Equal(t, int64(9), asset.Size)
	assert.True(t, strings.HasPrefix(asset.URL, "/uploads/paiements/"))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(asset.PublicID)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(stored))

	require.NoError(t, up.Delete(context.Background(), asset.PublicID))
	require.NoError(t, up.Delete(context.Background(), asset.PublicID))
	assert.Error(t, up.Delete(context.Background(), "../outside.png"))
}

func fastRetry() retry.Config {
	return retry.Config{Enabled: true, MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1}
}

func newCloudinary(t *testing.T, srv *httptest.Server, mutate func(*CloudinaryOptions)) *CloudinaryUploader {
	t.Helper()
	opts := CloudinaryOptions{
		CloudName:    "brina",
		UploadPreset: "unsigned",
		APIBase:      srv.URL,
		HTTPClient:   srv.Client(),
		Retry:        fastRetry(),
		Now:          func() time.Time { return time.Unix(1700000000, 0) },
	}
	if mutate != nil {
		mutate(&opts)
	}
	up, err := NewCloudinaryUploader(opts)
	require.NoError(t, err)
	return up
}

func TestCloudinaryUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/brina/image/upload", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "unsigned", r.FormValue("upload_preset"))
		assert.Equal(t, "paiements", r.FormValue("folder"))
		if file, _, err := r.FormFile("file"); assert.NoError(t, err) {
			data, _ := io.ReadAll(file)
			assert.Equal(t, "jpeg", string(data))
		}
		_, _ = io.WriteString(w, `{"secure_url":"https://res.example/p.jpg","public_id":"paiements/p","bytes":4}`)
	}))
	defer srv.Close()

	asset, err := newCloudinary(t, srv, nil).Upload(context.Background(), "paiements", "p.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.example/p.jpg", asset.URL)
	assert.Equal(t, "paiements/p", asset.PublicID)
	assert.Equal(t, DriverCloudinary, asset.Driver)
}

func TestCloudinaryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"secure_url":"https://res.example/x.png","public_id":"x"}`)
	}))
	defer srv.Close()

	_, err := newCloudinary(t, srv, nil).Upload(context.Background(), "menu", "x.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCloudinaryRejectedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"Upload preset not found"}}`)
	}))
	defer srv.Close()

	_, err := newCloudinary(t, srv, nil).Upload(context.Background(), "menu", "x.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "Upload preset not found")
	assert.Equal(t, int32(1), calls.Load())
}

func TestCloudinaryBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	up := newCloudinary(t, srv, nil)
	for i := 0; i < 3; i++ {
		_, err := up.Upload(context.Background(), "menu", "x.png", "image/png", strings.NewReader("x"))
		require.Error(t, err)
	}
	before := calls.Load()

	_, err := up.Upload(context.Background(), "menu", "x.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, calls.Load())
}

func TestCloudinaryDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/brina/image/destroy", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "key", r.FormValue("api_key"))
		want := Sign(map[string]string{"public_id": "menu/x", "timestamp": "1700000000"}, "secret")
		assert.Equal(t, want, r.FormValue("signature"))
		_, _ = io.WriteString(w, `{"result":"ok"}`)
	}))
	defer srv.Close()

	unsigned := newCloudinary(t, srv, nil)
	assert.ErrorIs(t, unsigned.Delete(context.Background(), "menu/x"), ErrDeleteUnsupported)

	signed := newCloudinary(t, srv, func(o *CloudinaryOptions) {
		o.APIKey = "key"
		o.APISecret = "secret"
	})
	require.NoError(t, signed.Delete(context.Background(), "menu/x"))
}

func TestSign(t *testing.T) {
	// sha1("public_id=sample&timestamp=1315060510abcd")
	got := Sign(map[string]string{"timestamp": "1315060510", "public_id": "sample"}, "abcd")
	assert.Equal(t, "c3470533147774275dd37996cc4d0e68fd03cd4f", got)
}

func TestNewCloudinaryUploaderValidates(t *testing.T) {
	_, err := NewCloudinaryUploader(CloudinaryOptions{CloudName: "x"})
	assert.Error(t, err)
}
