package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/common"
	"github.com/dmitrijs2005/liftaudit/internal/netx"
)

// HTTPClient talks to the audit server over same-origin style HTTP: a cookie
// jar carries the session, and the CSRF token is read back from the jar and
// replayed as a header on every state-changing request.
type HTTPClient struct {
	baseURL        *url.URL
	syncPath       string
	snapshotPath   string
	csrfCookieName string
	hc             *http.Client
}

// Option tweaks an HTTPClient during construction.
type Option func(*HTTPClient)

// WithHTTPClient substitutes the underlying http.Client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if jar := c.hc.Jar; jar != nil && hc.Jar == nil {
			hc.Jar = jar
		}
		c.hc = hc
	}
}

// NewHTTPClient builds a client for the given server base URL.
func NewHTTPClient(baseURL, syncPath, snapshotPath, csrfCookieName string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	c := &HTTPClient{
		baseURL:        u,
		syncPath:       syncPath,
		snapshotPath:   snapshotPath,
		csrfCookieName: csrfCookieName,
		hc: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) endpoint(path string) string {
	u := *c.baseURL
	u.Path = path
	return u.String()
}

// csrfToken returns the token stored in the cookie jar, empty when absent.
func (c *HTTPClient) csrfToken() string {
	if c.hc.Jar == nil || c.csrfCookieName == "" {
		return ""
	}
	for _, ck := range c.hc.Jar.Cookies(c.baseURL) {
		if ck.Name == c.csrfCookieName {
			return ck.Value
		}
	}
	return ""
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	if err := netx.CheckOnline(ctx, c.hc, c.endpoint(c.snapshotPath)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrOffline, err)
	}
	return nil
}

func (c *HTTPClient) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.snapshotPath), nil)
	if err != nil {
		return nil, fmt.Errorf("building snapshot request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var snap models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

func (c *HTTPClient) SubmitBatch(ctx context.Context, batch *BatchRequest) (*BatchResult, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encoding batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.syncPath), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.csrfToken(); token != "" {
		req.Header.Set(common.CSRFTokenHeaderName, token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{DeviceID: env.DeviceID, Audits: env.Audits}
	if env.Catalog != nil {
		result.Catalog = *env.Catalog
	}
	return result, nil
}

func (c *HTTPClient) UploadAttachment(ctx context.Context, deviceID string, meta AttachmentMeta, filename string, data []byte) (*UploadResult, error) {
	payload, err := json.Marshal(struct {
		DeviceID   string         `json:"device_id"`
		Attachment AttachmentMeta `json:"attachment"`
	}{DeviceID: deviceID, Attachment: meta})
	if err != nil {
		return nil, fmt.Errorf("encoding attachment payload: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("payload", string(payload)); err != nil {
		return nil, fmt.Errorf("writing payload field: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.syncPath), &buf)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if token := c.csrfToken(); token != "" {
		req.Header.Set(common.CSRFTokenHeaderName, token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	if env.Attachment == nil {
		return nil, fmt.Errorf("%w: upload response missing attachment", common.ErrServerRejected)
	}

	result := *env.Attachment
	if env.Duplicate {
		result.Duplicate = true
	}
	return &result, nil
}

// decodeEnvelope parses the response body and converts non-ok envelopes and
// non-2xx statuses into *ServerError.
func decodeEnvelope(resp *http.Response) (*envelope, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", common.ErrTransport, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &ServerError{HTTPStatus: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if env.Status != "ok" || resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{
			HTTPStatus: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Message,
			Errors:     env.Errors,
		}
	}
	return &env, nil
}

func (c *HTTPClient) decodeError(resp *http.Response) error {
	_, err := decodeEnvelope(resp)
	if err != nil {
		return err
	}
	return &ServerError{HTTPStatus: resp.StatusCode}
}
