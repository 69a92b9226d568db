package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/justgold/justgold-backend/pkg/config"
	"github.com/justgold/justgold-backend/pkg/logger"
)

const (
	apiBase     = "https://api.cloudinary.com/v1_1"
	pingTimeout = 5 * time.Second
)

// ResourceType selects the Cloudinary upload pipeline for an asset.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

// UploadResult carries the delivery URL and the public ID Cloudinary
// assigned to an uploaded asset. The public ID is what later destroy
// calls must reference.
type UploadResult struct {
	URL      string
	PublicID string
}

// Uploader is the surface the media layer depends on.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string, resourceType ResourceType) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string, resourceType ResourceType) error
}

type Client struct {
	httpClient *http.Client
	cloudName  string
	apiKey     string
	apiSecret  string
	baseFolder string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func closeBody(ctx context.Context, logg *logger.Logger, body io.Closer, msg string) {
	if body == nil {
		return
	}
	if err := body.Close(); err != nil && logg != nil {
		logg.Warn(ctx, msg)
	}
}

func NewClient(ctx context.Context, cfg config.CloudinaryConfig, logg *logger.Logger) (*Client, error) {
	if cfg.CloudName == "" {
		return nil, errors.New("cloudinary cloud name is required")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary api credentials are required")
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		baseFolder: cfg.BaseFolder,
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("cloudinary health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "cloudinary client initialized")
	}

	return client, nil
}

func (c *Client) BaseFolder() string {
	if c == nil {
		return ""
	}
	return c.baseFolder
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errors.New("cloudinary client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/%s/ping", apiBase, url.PathEscape(c.cloudName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return fmt.Errorf("cloudinary ping failed: %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("cloudinary ping failed: %s", resp.Status)
	}

	return nil
}

// Upload sends an asset through the signed upload endpoint and returns
// its delivery URL and public ID. Assets land under the configured base
// folder.
func (c *Client) Upload(ctx context.Context, data []byte, filename string, resourceType ResourceType) (*UploadResult, error) {
	if c == nil {
		return nil, errors.New("cloudinary client not initialized")
	}
	if len(data) == 0 {
		return nil, errors.New("empty upload payload")
	}
	if resourceType == "" {
		resourceType = ResourceImage
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"timestamp": timestamp,
	}
	if c.baseFolder != "" {
		params["folder"] = c.baseFolder
	}
	signature := signParams(params, c.apiSecret)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return nil, err
	}
	if err := writer.WriteField("signature", signature); err != nil {
		return nil, err
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s/%s/upload", apiBase, url.PathEscape(c.cloudName), string(resourceType))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { closeBody(ctx, nil, resp.Body, "cloudinary: closing response body failed") }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("cloudinary upload returned %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	var uploadResp struct {
		SecureURL string `json:"secure_url"`
		PublicID  string `json:"public_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return nil, err
	}
	if uploadResp.SecureURL == "" || uploadResp.PublicID == "" {
		return nil, errors.New("cloudinary upload response missing asset identifiers")
	}

	return &UploadResult{URL: uploadResp.SecureURL, PublicID: uploadResp.PublicID}, nil
}

// Destroy removes an asset by public ID. Cloudinary reports "not found"
// as a successful response with result "not found"; that is treated as
// success so reconciliation stays idempotent.
func (c *Client) Destroy(ctx context.Context, publicID string, resourceType ResourceType) error {
	if c == nil {
		return errors.New("cloudinary client not initialized")
	}
	if publicID == "" {
		return errors.New("public id is required")
	}
	if resourceType == "" {
		resourceType = ResourceImage
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}
	signature := signParams(params, c.apiSecret)

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("api_key", c.apiKey)
	form.Set("signature", signature)

	u := fmt.Sprintf("%s/%s/%s/destroy", apiBase, url.PathEscape(c.cloudName), string(resourceType))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { closeBody(ctx, nil, resp.Body, "cloudinary: closing response body failed") }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("cloudinary destroy returned %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	var destroyResp struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&destroyResp); err != nil {
		return err
	}
	if destroyResp.Result != "ok" && destroyResp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy result %q", destroyResp.Result)
	}

	return nil
}

// signParams builds the request signature: parameters sorted by key,
// joined as key=value pairs with "&", then the API secret appended and
// the whole string SHA-1 hashed.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
