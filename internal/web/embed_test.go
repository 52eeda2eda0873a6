package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHasEmbeddedFiles(t *testing.T) {
	if !HasEmbeddedFiles() {
		t.Fatal("expected embedded frontend to be present")
	}
}

func TestGetFileSystem(t *testing.T) {
	staticFS, err := GetFileSystem()
	if err != nil {
		t.Fatalf("GetFileSystem: %v", err)
	}

	f, err := staticFS.Open("index.html")
	if err != nil {
		t.Fatalf("open index.html: %v", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	for _, want := range []string{`id="uploadForm"`, `id="uploadBtn"`, `id="file"`} {
		if !strings.Contains(string(content), want) {
			t.Errorf("index.html missing %s", want)
		}
	}
}

func TestRegisterStaticRoutes(t *testing.T) {
	e := echo.New()
	if err := RegisterStaticRoutes(e); err != nil {
		t.Fatalf("RegisterStaticRoutes: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "root serves page", path: "/"},
		{name: "unknown path falls back to page", path: "/some/client/route"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "uploadForm") {
				t.Error("expected response to contain the upload form")
			}
		})
	}
}
