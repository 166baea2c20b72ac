package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/photofolio/internal/auth"
	"github.com/photofolio/internal/db"
	"github.com/photofolio/internal/handler"
	"github.com/photofolio/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T, staticDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&db.Project{}, &db.ContentBlock{}, &db.SiteSetting{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	api := handler.NewAPI(handler.Deps{
		Projects: service.NewProjectService(gdb, nil),
		Iconic:   service.NewIconicImageService(gdb),
		Policy:   auth.NewAdminPolicy([]string{"owner@example.com"}),
	})
	return SetupRouter(api, Options{
		SessionSecret: "test-secret",
		StaticDir:     staticDir,
		StaticURL:     "/static/uploads",
	})
}

func TestSetupRouterServesUploads(t *testing.T) {
	uploadDir := t.TempDir()
	fileContent := []byte("hello uploads")
	if err := os.WriteFile(filepath.Join(uploadDir, "example.txt"), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	r := setupTestRouter(t, uploadDir)

	req := httptest.NewRequest(http.MethodGet, "/static/uploads/example.txt", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != string(fileContent) {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	r := setupTestRouter(t, "")

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/projects"},
		{http.MethodPut, "/api/projects/p1"},
		{http.MethodDelete, "/api/projects/p1"},
		{http.MethodPost, "/api/projects/p1/blocks"},
		{http.MethodPost, "/api/upload"},
		{http.MethodDelete, "/api/delete-image?url=x"},
		{http.MethodGet, "/api/gallery-images"},
		{http.MethodPost, "/api/iconic-images"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rr.Code)
		}
	}
}

func TestPublicRoutes(t *testing.T) {
	r := setupTestRouter(t, "")

	for _, path := range []string{"/ping", "/api/projects", "/api/projects-list", "/api/iconic-images", "/auth/me"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", path, rr.Code, rr.Body.String())
		}
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected login to report missing oauth config, got %d", rr.Code)
	}
}
