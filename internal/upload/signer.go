package upload

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"
)

// Parameters that are sent with a CDN request but never signed.
var unsignedParams = map[string]bool{
	"file":          true,
	"api_key":       true,
	"cloud_name":    true,
	"resource_type": true,
	"signature":     true,
}

// Signer computes CDN request signatures. The secret never leaves the
// server.
type Signer struct {
	apiKey    string
	secret    string
	cloudName string
	baseURL   string
	now       func() time.Time
}

// NewSigner creates a signer from cfg.
func NewSigner(cfg config.CDNConfig) *Signer {
	return &Signer{
		apiKey:    cfg.APIKey,
		secret:    cfg.APISecret,
		cloudName: cfg.CloudName,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		now:       time.Now,
	}
}

// Enabled reports whether a secret, API key and cloud name are set.
func (s *Signer) Enabled() bool {
	return s.secret != "" && s.apiKey != "" && s.cloudName != ""
}

// Sign returns the lowercase hex HMAC-SHA1 of the sorted, non-empty
// params joined as k=v&k=v.
func (s *Signer) Sign(params map[string]string) (string, error) {
	if s.secret == "" {
		return "", model.ErrNotConfigured
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" || unsignedParams[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	mac := hmac.New(sha1.New, []byte(s.secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// SignUpload signs exactly public_id=<publicID>&timestamp=<timestamp>.
// Both values are required.
func (s *Signer) SignUpload(publicID, timestamp string) (string, error) {
	if publicID == "" || timestamp == "" {
		return "", model.ErrMissingField
	}
	return s.Sign(map[string]string{"public_id": publicID, "timestamp": timestamp})
}

// SignedRequest is what a browser needs to call the CDN directly.
type SignedRequest struct {
	Signature  string `json:"signature"`
	Timestamp  string `json:"timestamp"`
	APIKey     string `json:"api_key"`
	CloudName  string `json:"cloud_name"`
	PublicID   string `json:"public_id"`
	Folder     string `json:"folder,omitempty"`
	UploadURL  string `json:"upload_url,omitempty"`
	DestroyURL string `json:"destroy_url,omitempty"`
}

// SignedUpload signs an upload of publicID into folder at the current time.
func (s *Signer) SignedUpload(publicID, folder string) (*SignedRequest, error) {
	if !s.Enabled() {
		return nil, model.ErrNotConfigured
	}
	if publicID == "" {
		return nil, model.ErrMissingField
	}

	ts := s.timestamp()
	sig, err := s.Sign(map[string]string{"public_id": publicID, "folder": folder, "timestamp": ts})
	if err != nil {
		return nil, err
	}

	return &SignedRequest{
		Signature: sig,
		Timestamp: ts,
		APIKey:    s.apiKey,
		CloudName: s.cloudName,
		PublicID:  publicID,
		Folder:    folder,
		UploadURL: s.UploadURL(),
	}, nil
}

// SignedDestroy signs a deletion of publicID at the current time.
func (s *Signer) SignedDestroy(publicID string) (*SignedRequest, error) {
	if !s.Enabled() {
		return nil, model.ErrNotConfigured
	}
	if publicID == "" {
		return nil, model.ErrMissingField
	}

	ts := s.timestamp()
	sig, err := s.SignUpload(publicID, ts)
	if err != nil {
		return nil, err
	}

	return &SignedRequest{
		Signature:  sig,
		Timestamp:  ts,
		APIKey:     s.apiKey,
		CloudName:  s.cloudName,
		PublicID:   publicID,
		DestroyURL: s.DestroyURL(),
	}, nil
}

// UploadURL is the CDN image upload endpoint.
func (s *Signer) UploadURL() string {
	return s.baseURL + "/" + s.cloudName + "/image/upload"
}

// DestroyURL is the CDN image destroy endpoint.
func (s *Signer) DestroyURL() string {
	return s.baseURL + "/" + s.cloudName + "/image/destroy"
}

func (s *Signer) timestamp() string {
	return strconv.FormatInt(s.now().Unix(), 10)
}
