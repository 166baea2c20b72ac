package handler_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
)

type uploadResponse struct {
	URL      string `json:"url"`
	Pathname string `json:"pathname"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type usageResponse struct {
	URL      string `json:"url"`
	InUse    bool   `json:"inUse"`
	Projects []struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	} `json:"projects"`
}

func (s *testServer) upload(t *testing.T, fields map[string]string, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(data)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.send(req)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	img.Set(1, 1, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadListAndGuardedDelete(t *testing.T) {
	s := newTestServer(t)
	s.signIn(t, adminEmail)

	rr := s.upload(t, map[string]string{"folder": "faroe", "imageName": "Gasadalur"}, "image/png", testPNG(t))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected upload to succeed, got %d: %s", rr.Code, rr.Body.String())
	}
	uploaded := decode[uploadResponse](t, rr)
	if uploaded.Width != 6 || uploaded.Height != 4 {
		t.Fatalf("unexpected dimensions %+v", uploaded)
	}

	if served := s.request(t, http.MethodGet, uploaded.URL, nil); served.Code != http.StatusOK {
		t.Fatalf("expected uploaded file to be served, got %d", served.Code)
	}

	listing := decode[struct {
		Images []uploadResponse `json:"images"`
	}](t, s.request(t, http.MethodGet, "/api/gallery-images?folder=faroe", nil))
	if len(listing.Images) != 1 || listing.Images[0].URL != uploaded.URL {
		t.Fatalf("unexpected gallery listing %+v", listing)
	}

	owner := decode[projectResponse](t, s.request(t, http.MethodPost, "/api/projects", map[string]any{
		"title": "Faroe", "featuredImage": uploaded.URL,
	}))

	usage := decode[usageResponse](t, s.request(t, http.MethodGet, "/api/image-usage?url="+uploaded.URL, nil))
	if !usage.InUse || len(usage.Projects) != 1 || usage.Projects[0].ID != owner.ID {
		t.Fatalf("unexpected usage %+v", usage)
	}

	conflict := s.request(t, http.MethodDelete, "/api/delete-image?url="+uploaded.URL, nil)
	if conflict.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", conflict.Code)
	}
	if refs := decode[usageResponse](t, conflict); len(refs.Projects) != 1 || refs.Projects[0].Slug != "faroe" {
		t.Fatalf("expected referencing project in the conflict, got %s", conflict.Body.String())
	}

	s.request(t, http.MethodPut, "/api/projects/"+owner.ID, map[string]any{"featuredImage": ""})
	if rr := s.request(t, http.MethodDelete, "/api/delete-image?url="+uploaded.URL, nil); rr.Code != http.StatusOK {
		t.Fatalf("expected delete to succeed, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr := s.request(t, http.MethodDelete, "/api/delete-image?url="+uploaded.URL, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a deleted image, got %d", rr.Code)
	}
}

func TestUploadRejectsNonImages(t *testing.T) {
	s := newTestServer(t)
	s.signIn(t, adminEmail)

	if rr := s.upload(t, nil, "text/plain", []byte("hello")); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if rr := s.request(t, http.MethodDelete, "/api/delete-image", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without url, got %d", rr.Code)
	}
}

func TestIconicImagesEndpoints(t *testing.T) {
	s := newTestServer(t)
	visitor := newAnonymous(s)

	if rr := visitor.request(t, http.MethodPost, "/api/iconic-images", map[string]any{"images": []string{"/a.jpg"}}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for visitors, got %d", rr.Code)
	}

	s.signIn(t, adminEmail)
	if rr := s.request(t, http.MethodPost, "/api/iconic-images", map[string]any{"images": []string{"/b.jpg", "/a.jpg", "/b.jpg"}}); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got := decode[struct {
		Images []string `json:"images"`
	}](t, visitor.request(t, http.MethodGet, "/api/iconic-images", nil))
	if len(got.Images) != 2 || got.Images[0] != "/b.jpg" {
		t.Fatalf("unexpected iconic images %v", got.Images)
	}
}
