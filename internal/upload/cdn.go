package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// FileSource is a file to send to the CDN. Size may be zero when unknown,
// in which case progress jumps from 0 to 100.
type FileSource struct {
	Name   string
	Reader io.Reader
	Size   int64
}

// UploadOptions name the uploaded asset.
type UploadOptions struct {
	PublicID string
	Folder   string
}

// UploadResult is the subset of the CDN upload response the service uses.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// CDNError is a non-2xx answer from the CDN.
type CDNError struct {
	StatusCode int
	Message    string
}

func (e *CDNError) Error() string {
	return fmt.Sprintf("cdn request failed with status %d: %s", e.StatusCode, e.Message)
}

// CDNClient uploads to and deletes from the image CDN.
type CDNClient struct {
	signer *Signer
	preset string
	client *http.Client
	logger zerolog.Logger
}

// NewCDNClient creates a client. A nil httpClient uses http.DefaultClient.
func NewCDNClient(cfg config.CDNConfig, signer *Signer, httpClient *http.Client, logger zerolog.Logger) *CDNClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CDNClient{
		signer: signer,
		preset: cfg.UploadPreset,
		client: httpClient,
		logger: logger.With().Str("component", "cdn").Logger(),
	}
}

// Upload streams src to the CDN as a signed multipart form. progress, when
// set, receives non-decreasing percentages from 0 to 100 and may be called
// from another goroutine. Failures are returned as is; there is no retry.
func (c *CDNClient) Upload(ctx context.Context, src FileSource, opts UploadOptions, progress func(int)) (*UploadResult, error) {
	if !c.signer.Enabled() {
		return nil, model.ErrNotConfigured
	}

	fields := map[string]string{
		"public_id":     opts.PublicID,
		"folder":        opts.Folder,
		"timestamp":     c.signer.timestamp(),
		"upload_preset": c.preset,
	}
	sig, err := c.signer.Sign(fields)
	if err != nil {
		return nil, err
	}
	fields["signature"] = sig
	fields["api_key"] = c.signer.apiKey

	tracker := newProgress(progress)
	tracker.report(0)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeForm(mw, fields, src, tracker))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signer.UploadURL(), pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		c.logger.Error().Err(err).Str("public_id", opts.PublicID).Msg("upload request failed")
		return nil, fmt.Errorf("failed to upload to cdn: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cdnErr := parseCDNError(resp)
		c.logger.Warn().Int("status", resp.StatusCode).Str("message", cdnErr.Message).Msg("cdn rejected upload")
		return nil, cdnErr
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	tracker.report(100)

	c.logger.Info().
		Str("public_id", result.PublicID).
		Int64("bytes", result.Bytes).
		Msg("asset uploaded to cdn")

	return &result, nil
}

// Destroy deletes publicID. An asset that is already gone counts as
// deleted.
func (c *CDNClient) Destroy(ctx context.Context, publicID string) error {
	signed, err := c.signer.SignedDestroy(publicID)
	if err != nil {
		return err
	}

	form := url.Values{
		"public_id": {signed.PublicID},
		"timestamp": {signed.Timestamp},
		"api_key":   {signed.APIKey},
		"signature": {signed.Signature},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signed.DestroyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to destroy cdn asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseCDNError(resp)
	}

	var body struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode destroy response: %w", err)
	}

	switch body.Result {
	case "ok", "not found":
		c.logger.Debug().Str("public_id", publicID).Str("result", body.Result).Msg("cdn asset destroyed")
		return nil
	default:
		return &CDNError{StatusCode: resp.StatusCode, Message: "unexpected destroy result: " + body.Result}
	}
}

func writeForm(mw *multipart.Writer, fields map[string]string, src FileSource, tracker *progress) error {
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", src.Name)
	if err != nil {
		return err
	}

	w := io.Writer(part)
	if src.Size > 0 {
		w = &countingWriter{w: part, total: src.Size, tracker: tracker}
	}
	if _, err := io.Copy(w, src.Reader); err != nil {
		return err
	}
	return mw.Close()
}

func parseCDNError(resp *http.Response) *CDNError {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := http.StatusText(resp.StatusCode)
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		msg = body.Error.Message
	}
	return &CDNError{StatusCode: resp.StatusCode, Message: msg}
}

// progress forwards only increasing percentages.
type progress struct {
	mu   sync.Mutex
	fn   func(int)
	last int
}

func newProgress(fn func(int)) *progress {
	return &progress{fn: fn, last: -1}
}

func (p *progress) report(pct int) {
	if p.fn == nil {
		return
	}
	pct = max(0, min(pct, 100))

	p.mu.Lock()
	defer p.mu.Unlock()
	if pct <= p.last {
		return
	}
	p.last = pct
	p.fn(pct)
}

type countingWriter struct {
	w       io.Writer
	written int64
	total   int64
	tracker *progress
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.written += int64(n)
	// 100 is reported once the CDN has accepted the file.
	c.tracker.report(min(int(c.written*100/c.total), 99))
	return n, err
}
