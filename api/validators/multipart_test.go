package validators

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func multipartRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for key, data := range files {
		part, err := writer.CreateFormFile(key, key+".png")
		if err != nil {
			t.Fatalf("create file %s: %v", key, err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write file %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestDecodeProductFormFullPayload(t *testing.T) {
	req := multipartRequest(t,
		map[string]string{
			"name":            "Velvet Lipstick",
			"base_price":      "1299.50",
			"base_stock":      "12",
			"category_id":     "3",
			"description":     "matte finish",
			"variants":        `[{"shade":"Ruby","stock":4,"price":"999","color_panel_type":"hex","color_panel_value":"#a02020"},{"id":7,"shade":"Coral"}]`,
			"delete_media":    `[10,11]`,
			"delete_variants": `[5]`,
		},
		map[string][]byte{
			"thumbnail":            []byte("thumb-bytes"),
			"gallery":              []byte("gallery-bytes"),
			"video":                []byte("video-bytes"),
			"variant_main_image_0": []byte("main-0"),
			"color_1":              []byte("panel-1"),
		},
	)

	form, err := DecodeProductForm(req, 10<<20)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if form.Name == nil || *form.Name != "Velvet Lipstick" {
		t.Fatalf("unexpected name: %v", form.Name)
	}
	if form.BasePrice == nil || form.BasePrice.String() != "1299.5" {
		t.Fatalf("unexpected base price: %v", form.BasePrice)
	}
	if form.BaseStock == nil || *form.BaseStock != 12 {
		t.Fatalf("unexpected base stock: %v", form.BaseStock)
	}
	if form.CategoryID == nil || *form.CategoryID != 3 {
		t.Fatalf("unexpected category: %v", form.CategoryID)
	}

	if len(form.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(form.Variants))
	}
	if form.Variants[0].Shade == nil || *form.Variants[0].Shade != "Ruby" {
		t.Fatalf("unexpected variant 0: %+v", form.Variants[0])
	}
	if form.Variants[1].ID == nil || *form.Variants[1].ID != 7 {
		t.Fatalf("variant 1 id not decoded: %+v", form.Variants[1])
	}
	if form.Variants[1].Stock != nil {
		t.Fatal("absent stock must stay nil")
	}

	if len(form.DeleteMedia) != 2 || form.DeleteMedia[0] != 10 {
		t.Fatalf("unexpected delete_media: %v", form.DeleteMedia)
	}
	if len(form.DeleteVariants) != 1 || form.DeleteVariants[0] != 5 {
		t.Fatalf("unexpected delete_variants: %v", form.DeleteVariants)
	}

	if form.Thumbnail == nil || string(form.Thumbnail.Data) != "thumb-bytes" {
		t.Fatal("thumbnail not decoded")
	}
	if len(form.Gallery) != 1 || string(form.Gallery[0].Data) != "gallery-bytes" {
		t.Fatal("gallery not decoded")
	}
	if form.Video == nil {
		t.Fatal("video not decoded")
	}
	if form.VariantFiles[0].MainImage == nil || string(form.VariantFiles[0].MainImage.Data) != "main-0" {
		t.Fatal("variant 0 main image not decoded")
	}
	if form.VariantFiles[1].ColorPanel == nil {
		t.Fatal("variant 1 color panel not decoded")
	}
}

func TestDecodeProductFormRejectsBadNumbers(t *testing.T) {
	cases := map[string]map[string]string{
		"base_price":  {"base_price": "not-a-number"},
		"base_stock":  {"base_stock": "many"},
		"category_id": {"category_id": "0"},
		"variants":    {"variants": "{not json"},
		"delete ids":  {"delete_media": `["a"]`},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			req := multipartRequest(t, fields, nil)
			if _, err := DecodeProductForm(req, 10<<20); err == nil {
				t.Fatal("expected decode error")
			}
		})
	}
}

func TestDecodeProductFormEmptyBody(t *testing.T) {
	req := multipartRequest(t, nil, nil)
	form, err := DecodeProductForm(req, 10<<20)
	if err != nil {
		t.Fatalf("empty form must decode: %v", err)
	}
	if form.Name != nil || form.Thumbnail != nil || len(form.Variants) != 0 {
		t.Fatalf("expected empty form, got %+v", form)
	}
}

func TestParseIDSlug(t *testing.T) {
	cases := []struct {
		raw   string
		id    int64
		slug  string
		fails bool
	}{
		{raw: "12-velvet-lipstick", id: 12, slug: "velvet-lipstick"},
		{raw: "12", id: 12, slug: ""},
		{raw: "12-", id: 12, slug: ""},
		{raw: "abc-slug", fails: true},
		{raw: "", fails: true},
		{raw: "-slug", fails: true},
	}
	for _, tc := range cases {
		id, slug, err := ParseIDSlug(tc.raw)
		if tc.fails {
			if err == nil {
				t.Errorf("%q: expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.raw, err)
			continue
		}
		if id != tc.id || slug != tc.slug {
			t.Errorf("%q: got (%d, %q), want (%d, %q)", tc.raw, id, slug, tc.id, tc.slug)
		}
	}
}

func TestParseOptionalPrice(t *testing.T) {
	if value, err := ParseOptionalPrice(nil); err != nil || value.IsSet() {
		t.Fatal("nil must stay unset")
	}
	blank := "  "
	if value, err := ParseOptionalPrice(&blank); err != nil || value.IsSet() {
		t.Fatal("blank must stay unset")
	}
	good := "12.50"
	value, err := ParseOptionalPrice(&good)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := value.Get(); !ok || got.String() != "12.5" {
		t.Fatalf("unexpected value: %v", got)
	}
	bad := "free"
	if _, err := ParseOptionalPrice(&bad); err == nil {
		t.Fatal("expected error for non-numeric price")
	}
}
