package storage

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/travelapp/restaurants/backend/go-services/internal/config"
)

func TestObjectKey(t *testing.T) {
	at := time.Unix(0, 1700000000000000000)
	require.Equal(t, "deleted/R1/1700000000000000000.json", ObjectKey("deleted/", "R1", at))
	// ids are used verbatim by the API, so escape anything that would add path segments
	key := ObjectKey("deleted", "a/b", at)
	require.True(t, strings.HasPrefix(key, "deleted/a%2Fb/"), key)
}

func TestNewMinIOArchive_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIOArchive(context.Background(), config.ArchiveConfig{})
	require.Error(t, err)
}

// fakeS3 answers the handful of S3 calls the archive makes and records uploads.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && r.URL.Query().Has("location"):
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/"></LocationConstraint>`)
	case r.Method == http.MethodPut && key == "":
		f.buckets[bucket] = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		body, err := readPayload(r)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.objects[bucket+"/"+key] = body
		f.types[bucket+"/"+key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *fakeS3) hasBucket(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[name]
}

func (f *fakeS3) object(k string) ([]byte, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[k], f.types[k]
}

// readPayload returns the object bytes, undoing aws-chunked framing
// ("<hex-size>;chunk-signature=...\r\n<data>\r\n" until a zero-size chunk).
func readPayload(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
		return io.ReadAll(r.Body)
	}
	br := bufio.NewReader(r.Body)
	var out []byte
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, err
		}
		sizeHex, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return out, nil
		}
		chunk := make([]byte, size+2)
		if _, err := io.ReadFull(br, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk[:size]...)
	}
}

func TestMinIOArchive_ArchiveAndPresign(t *testing.T) {
	s3 := newFakeS3()
	srv := httptest.NewServer(s3)
	defer srv.Close()

	ctx := context.Background()
	arch, err := NewMinIOArchive(ctx, config.ArchiveConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "restaurants-archive",
		Prefix:    "deleted/",
	})
	require.NoError(t, err)
	require.True(t, s3.hasBucket("restaurants-archive"))

	arch.now = func() time.Time { return time.Unix(0, 42) }
	body := []byte(`{"restaurant_id":"R1","cuisine":"French"}`)
	key, err := arch.Archive(ctx, "R1", body)
	require.NoError(t, err)
	require.Equal(t, "deleted/R1/42.json", key)
	stored, contentType := s3.object("restaurants-archive/" + key)
	require.Equal(t, body, stored)
	require.Equal(t, "application/json", contentType)

	raw, err := arch.PresignedURL(ctx, key, 15*time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/restaurants-archive/"+key, u.Path)
	require.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	require.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestMinIOArchive_ArchiveFailure(t *testing.T) {
	s3 := newFakeS3()
	srv := httptest.NewServer(s3)

	ctx := context.Background()
	arch, err := NewMinIOArchive(ctx, config.ArchiveConfig{
		Endpoint: strings.TrimPrefix(srv.URL, "http://"),
		Bucket:   "restaurants-archive",
	})
	require.NoError(t, err)
	srv.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err = arch.Archive(ctx, "R1", []byte(`{}`))
	require.Error(t, err)
}
