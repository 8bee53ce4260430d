package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCDN(t *testing.T, handler http.HandlerFunc) *CDNClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testCDNConfig()
	cfg.BaseURL = srv.URL
	return NewCDNClient(cfg, NewSigner(cfg), srv.Client(), zerolog.Nop())
}

func TestCDNClient_Upload(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 256<<10)

	client := newTestCDN(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/image/upload", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		assert.Equal(t, "key-123", r.FormValue("api_key"))
		assert.Equal(t, "suya", r.FormValue("public_id"))
		assert.Equal(t, "storefront/menu", r.FormValue("folder"))

		want := expectedSignature("shh", "folder=storefront/menu&public_id=suya&timestamp="+r.FormValue("timestamp"))
		assert.Equal(t, want, r.FormValue("signature"))

		file, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		got, _ := io.ReadAll(file)
		assert.Len(t, got, len(payload))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"public_id":  "storefront/menu/suya",
			"secure_url": "https://res.cloudinary.com/demo/image/upload/storefront/menu/suya.png",
			"bytes":      len(got),
		})
	})

	var mu sync.Mutex
	var seen []int
	result, err := client.Upload(context.Background(),
		FileSource{Name: "suya.png", Reader: bytes.NewReader(payload), Size: int64(len(payload))},
		UploadOptions{PublicID: "suya", Folder: "storefront/menu"},
		func(pct int) {
			mu.Lock()
			seen = append(seen, pct)
			mu.Unlock()
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "storefront/menu/suya", result.PublicID)
	assert.Contains(t, result.SecureURL, "https://res.cloudinary.com/")

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, 0, seen[0])
	assert.Equal(t, 100, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1], "progress must increase")
	}
}

func TestCDNClient_Upload_ErrorResponse(t *testing.T) {
	client := newTestCDN(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
	})

	_, err := client.Upload(context.Background(),
		FileSource{Name: "a.png", Reader: bytes.NewReader([]byte("abc")), Size: 3},
		UploadOptions{PublicID: "a"}, nil)

	var cdnErr *CDNError
	require.ErrorAs(t, err, &cdnErr)
	assert.Equal(t, http.StatusBadRequest, cdnErr.StatusCode)
	assert.Equal(t, "Invalid Signature", cdnErr.Message)
}

func TestCDNClient_Upload_NotConfigured(t *testing.T) {
	cfg := testCDNConfig()
	cfg.APISecret = ""
	client := NewCDNClient(cfg, NewSigner(cfg), nil, zerolog.Nop())

	_, err := client.Upload(context.Background(), FileSource{Name: "a.png", Reader: bytes.NewReader(nil)}, UploadOptions{}, nil)
	assert.ErrorIs(t, err, model.ErrNotConfigured)
}

func TestCDNClient_Destroy(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		expectErr bool
	}{
		{"deleted", http.StatusOK, `{"result":"ok"}`, false},
		{"already gone is success", http.StatusOK, `{"result":"not found"}`, false},
		{"unexpected result", http.StatusOK, `{"result":"error"}`, true},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestCDN(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/demo/image/destroy", r.URL.Path)
				assert.NoError(t, r.ParseForm())
				assert.Equal(t, "menu/suya", r.PostForm.Get("public_id"))
				want := expectedSignature("shh", "public_id=menu/suya&timestamp="+r.PostForm.Get("timestamp"))
				assert.Equal(t, want, r.PostForm.Get("signature"))

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := client.Destroy(context.Background(), "menu/suya")
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPipeline_Discard_AlreadyGone(t *testing.T) {
	var calls int
	client := newTestCDN(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "menu/mama-put/item-1", r.PostForm.Get("public_id"))
		_, _ = w.Write([]byte(`{"result":"not found"}`))
	})
	p := NewPipeline(client, nil, 1<<20, zerolog.Nop())

	err := p.Discard(context.Background(), Target{Kind: KindCDN, Folder: "menu/mama-put", Naming: NamingFixed, PublicID: "item-1"})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
