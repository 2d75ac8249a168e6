package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erp/orderdesk/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeS3 serves the path-style subset of the S3 API the archive uses
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3(buckets ...string) *fakeS3 {
	f := &fakeS3{
		buckets: map[string]bool{},
		objects: map[string][]byte{},
		types:   map[string]string{},
	}
	for _, b := range buckets {
		f.buckets[b] = true
	}
	return f
}

func (f *fakeS3) hasBucket(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[name]
}

func (f *fakeS3) object(name string) (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.objects[name]), f.types[name]
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if key == "" {
		switch r.Method {
		case http.MethodHead:
			if !f.buckets[bucket] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		case http.MethodPut:
			f.buckets[bucket] = true
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	name := bucket + "/" + key
	switch r.Method {
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.objects[name] = body
		f.types[name] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[name]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, name)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func testConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Endpoint:     endpoint,
		Bucket:       "reports",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
		Prefix:       "dashboards",
	}
}

func TestNewArchive_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewArchive(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		a, err := NewArchive(testConfig("localhost:9000"))
		require.NoError(t, err)
		assert.Equal(t, "reports", a.Bucket())
		assert.Equal(t, 15*time.Minute, a.presignExpiration)
	})

	t.Run("options", func(t *testing.T) {
		a, err := NewArchive(testConfig("localhost:9000"), WithPresignExpiration(time.Hour), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, a.presignExpiration)
	})
}

func TestArchive_Key(t *testing.T) {
	a, err := NewArchive(testConfig("localhost:9000"))
	require.NoError(t, err)
	assert.Equal(t, "dashboards/sales.json", a.Key("sales.json"))
	assert.Equal(t, "dashboards/2026/sales.json", a.Key("/2026/sales.json"))

	cfg := testConfig("localhost:9000")
	cfg.Prefix = "/"
	a, err = NewArchive(cfg)
	require.NoError(t, err)
	assert.Equal(t, "sales.json", a.Key("sales.json"))
}

func TestArchive_DownloadURL(t *testing.T) {
	a, err := NewArchive(testConfig("localhost:9000"))
	require.NoError(t, err)
	ctx := context.Background()

	u, expiresAt, err := a.DownloadURL(ctx, "dashboards/sales.json", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://localhost:9000/reports/dashboards/sales.json?"), u)
	assert.Contains(t, u, "X-Amz-Expires=300")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	u, _, err = a.DownloadURL(ctx, "dashboards/sales.json", 0)
	require.NoError(t, err)
	assert.Contains(t, u, "X-Amz-Expires=900")

	_, _, err = a.DownloadURL(ctx, "", 0)
	assert.ErrorIs(t, err, ErrKeyRequired)
}

func TestArchive_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	a, err := NewArchive(testConfig(srv.URL), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, a.EnsureBucket(ctx))
	assert.True(t, fake.hasBucket("reports"))
	require.NoError(t, a.EnsureBucket(ctx))

	key, err := a.Put(ctx, "sales_2026-03-01_2026-04-01.json", []byte(`{"order_count":3}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "dashboards/sales_2026-03-01_2026-04-01.json", key)
	body, contentType := fake.object("reports/" + key)
	assert.Equal(t, `{"order_count":3}`, body)
	assert.Equal(t, "application/json", contentType)

	ok, err := a.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, a.Delete(ctx, key))
	ok, err = a.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArchive_EmptyKey(t *testing.T) {
	a, err := NewArchive(testConfig("localhost:9000"))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = a.Put(ctx, "", nil, "application/json")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = a.Exists(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	assert.ErrorIs(t, a.Delete(ctx, ""), ErrKeyRequired)
}
