package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func testClient(transport roundTripFunc) *Client {
	return &Client{
		httpClient: &http.Client{Transport: transport},
		cloudName:  "demo",
		apiKey:     "key",
		apiSecret:  "secret",
		baseFolder: "just_gold/products",
	}
}

func TestSignParams(t *testing.T) {
	t.Parallel()

	params := map[string]string{
		"timestamp": "1700000000",
		"folder":    "just_gold/products",
	}
	got := signParams(params, "secret")

	sum := sha1.Sum([]byte("folder=just_gold/products&timestamp=1700000000secret"))
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Fatalf("unexpected signature %s, want %s", got, want)
	}
}

func TestUploadSuccess(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) *http.Response {
		if req.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", req.Method)
		}
		if !strings.Contains(req.URL.Path, "/demo/image/upload") {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart form: %v", err)
		}
		if got := req.FormValue("api_key"); got != "key" {
			t.Fatalf("unexpected api_key %q", got)
		}
		if got := req.FormValue("folder"); got != "just_gold/products" {
			t.Fatalf("unexpected folder %q", got)
		}
		if req.FormValue("signature") == "" {
			t.Fatal("signature missing")
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body: io.NopCloser(strings.NewReader(
				`{"secure_url":"https://res.cloudinary.com/demo/image/upload/v1700000000/just_gold/products/abc.png","public_id":"just_gold/products/abc"}`,
			)),
			Header: http.Header{},
		}
	})

	result, err := client.Upload(context.Background(), []byte("png-bytes"), "abc.png", ResourceImage)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.PublicID != "just_gold/products/abc" {
		t.Fatalf("unexpected public id %q", result.PublicID)
	}
	if !strings.HasPrefix(result.URL, "https://res.cloudinary.com/") {
		t.Fatalf("unexpected url %q", result.URL)
	}
}

func TestUploadEmptyPayload(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) *http.Response {
		t.Fatal("no request expected")
		return nil
	})
	if _, err := client.Upload(context.Background(), nil, "x.png", ResourceImage); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestUploadServerError(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: http.StatusBadRequest,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"Invalid signature"}}`)),
			Header:     http.Header{},
		}
	})
	if _, err := client.Upload(context.Background(), []byte("data"), "x.png", ResourceImage); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestDestroySuccess(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) *http.Response {
		if !strings.Contains(req.URL.Path, "/demo/video/destroy") {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		if err := req.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := req.FormValue("public_id"); got != "just_gold/products/videos/clip" {
			t.Fatalf("unexpected public_id %q", got)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"result":"ok"}`)),
			Header:     http.Header{},
		}
	})

	if err := client.Destroy(context.Background(), "just_gold/products/videos/clip", ResourceVideo); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
}

func TestDestroyNotFoundIsSuccess(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"result":"not found"}`)),
			Header:     http.Header{},
		}
	})

	if err := client.Destroy(context.Background(), "just_gold/products/gone", ResourceImage); err != nil {
		t.Fatalf("Destroy not found should succeed: %v", err)
	}
}

func TestDestroyFailedResult(t *testing.T) {
	t.Parallel()

	client := testClient(func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"result":"error"}`)),
			Header:     http.Header{},
		}
	})

	if err := client.Destroy(context.Background(), "just_gold/products/bad", ResourceImage); err == nil {
		t.Fatal("expected error for failed destroy result")
	}
}
