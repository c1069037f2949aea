package handler

import (
	"bytes"
	"encoding/json"
	"medialink-go/internal/middleware"
	"medialink-go/internal/model"
	"medialink-go/internal/repository"
	"medialink-go/internal/service"
	"medialink-go/pkg/logging"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logging.Logger = zap.NewNop()
	zap.ReplaceGlobals(logging.Logger)
	os.Exit(m.Run())
}

// memLinkStore 测试用的内存 LinkStore 实现
type memLinkStore struct {
	mu    sync.Mutex
	links map[string]model.Link
}

var _ repository.LinkStore = (*memLinkStore)(nil)

func newMemLinkStore() *memLinkStore {
	return &memLinkStore{links: make(map[string]model.Link)}
}

func (s *memLinkStore) Get(slug string) (*model.Link, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[slug]
	if !ok {
		return nil, false, nil
	}
	return &link, true, nil
}

func (s *memLinkStore) Create(link *model.Link) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[link.Slug]; ok {
		return false, nil
	}
	s.links[link.Slug] = *link
	return true, nil
}

func (s *memLinkStore) Delete(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, slug)
	return nil
}

func (s *memLinkStore) ListAll() ([]model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := make([]model.Link, 0, len(s.links))
	for _, link := range s.links {
		links = append(links, link)
	}
	return links, nil
}

func setUpRouter(store repository.LinkStore, adminKey string) *gin.Engine {
	guard := service.NewAccessGuard(adminKey)
	Setup(service.NewLinkService(store), service.NewRelayService(store, guard, nil), guard)

	r := gin.New()
	r.Use(middleware.GlobalErrorMiddleware())
	r.GET("/", IndexHandler)
	r.POST("/generate", GenerateLinkHandler)
	r.GET("/admin", AdminListHandler)
	r.POST("/delete", DeleteLinkHandler)
	r.GET("/download/:slug", DownloadHandler)
	r.GET("/stream/:slug", StreamHandler)
	return r
}

func postForm(r *gin.Engine, target string, form url.Values) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, request)
	return w
}

func TestGenerateLinkHandler(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		code int
	}{
		{
			name: "post_ok_200",
			form: url.Values{
				"url":       {"https://ex.com/a.bin"},
				"key":       {"s3cret"},
				"custom_id": {"Clip One"},
				"filename":  {"clip.mp4"},
			},
			code: http.StatusOK,
		},
		{
			name: "post_missing_url_400",
			form: url.Values{
				"key":       {"s3cret"},
				"custom_id": {"Clip One"},
			},
			code: http.StatusBadRequest,
		},
		{
			name: "post_missing_key_400",
			form: url.Values{
				"url":       {"https://ex.com/a.bin"},
				"custom_id": {"Clip One"},
			},
			code: http.StatusBadRequest,
		},
		{
			name: "post_missing_custom_id_400",
			form: url.Values{
				"url": {"https://ex.com/a.bin"},
				"key": {"s3cret"},
			},
			code: http.StatusBadRequest,
		},
		{
			name: "post_unnormalizable_custom_id_400",
			form: url.Values{
				"url":       {"https://ex.com/a.bin"},
				"key":       {"s3cret"},
				"custom_id": {"!!!"},
				"filename":  {"clip.mp4"},
			},
			code: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setUpRouter(newMemLinkStore(), "admin-secret")
			w := postForm(r, "/generate", tt.form)
			if w.Code != tt.code {
				t.Errorf("expected status code %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}
}

func TestGenerateLinkHandler_SlugConflict(t *testing.T) {
	r := setUpRouter(newMemLinkStore(), "admin-secret")

	form := url.Values{
		"url":       {"https://ex.com/a.bin"},
		"key":       {"s3cret"},
		"custom_id": {"Clip One"},
		"filename":  {"clip.mp4"},
	}
	if w := postForm(r, "/generate", form); w.Code != http.StatusOK {
		t.Fatalf("first registration failed: %d", w.Code)
	}

	var payload struct {
		Data struct {
			Slug     string `json:"slug"`
			Filename string `json:"filename"`
		} `json:"data"`
	}

	w := postForm(r, "/generate", form)
	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409 for duplicate slug, got %d", w.Code)
	}

	// 确认首次注册返回了归一化 slug 与最终文件名
	first := postForm(setUpRouter(newMemLinkStore(), "admin-secret"), "/generate", form)
	if err := json.Unmarshal(first.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data.Slug != "clip-one" || payload.Data.Filename != "clip.mp4" {
		t.Errorf("unexpected response data: %+v", payload.Data)
	}
}

func TestDownloadHandler_MissingKey(t *testing.T) {
	store := newMemLinkStore()
	if _, err := store.Create(&model.Link{Slug: "clip-one", UpstreamURL: "http://127.0.0.1:0/", SecretKey: "s3cret", Filename: "a.mp4"}); err != nil {
		t.Fatal(err)
	}
	r := setUpRouter(store, "admin-secret")

	for _, path := range []string{"/download/clip-one", "/stream/clip-one"} {
		request := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, request)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected status 401 without key, got %d", path, w.Code)
		}
	}
}

func TestDownloadHandler_LookupBeforeCredential(t *testing.T) {
	store := newMemLinkStore()
	if _, err := store.Create(&model.Link{Slug: "clip-one", UpstreamURL: "http://127.0.0.1:0/", SecretKey: "s3cret", Filename: "a.mp4"}); err != nil {
		t.Fatal(err)
	}
	r := setUpRouter(store, "admin-secret")

	request := httptest.NewRequest(http.MethodGet, "/download/clip-one?key=WRONG", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, request)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for wrong key, got %d", w.Code)
	}

	request = httptest.NewRequest(http.MethodGet, "/download/no-such?key=s3cret", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, request)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown slug, got %d", w.Code)
	}
}

func TestAdminListHandler(t *testing.T) {
	store := newMemLinkStore()
	if _, err := store.Create(&model.Link{Slug: "clip-one", UpstreamURL: "https://ex.com/a", SecretKey: "k", Filename: "a.mp4"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		adminKey string
		query    string
		code     int
	}{
		{name: "get_ok_200", adminKey: "admin-secret", query: "?key=admin-secret", code: http.StatusOK},
		{name: "get_wrong_key_403", adminKey: "admin-secret", query: "?key=wrong", code: http.StatusForbidden},
		{name: "get_unconfigured_401", adminKey: "", query: "?key=anything", code: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setUpRouter(store, tt.adminKey)
			request := httptest.NewRequest(http.MethodGet, "/admin"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, request)
			if w.Code != tt.code {
				t.Errorf("expected status code %d, got %d", tt.code, w.Code)
			}
		})
	}
}

func TestDeleteLinkHandler(t *testing.T) {
	store := newMemLinkStore()
	if _, err := store.Create(&model.Link{Slug: "clip-one", UpstreamURL: "https://ex.com/a", SecretKey: "k", Filename: "a.mp4"}); err != nil {
		t.Fatal(err)
	}
	r := setUpRouter(store, "admin-secret")

	// 错误的管理凭证 → 403
	w := postForm(r, "/delete?key=wrong", url.Values{"id": {"clip-one"}})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for wrong admin key, got %d", w.Code)
	}

	// 成功删除后 303 回到管理页
	w = postForm(r, "/delete?key=admin-secret", url.Values{"id": {"clip-one"}})
	if w.Code != http.StatusSeeOther {
		t.Errorf("expected status 303, got %d", w.Code)
	}
	if location := w.Header().Get("Location"); location != "/admin?key=admin-secret" {
		t.Errorf("unexpected redirect location %q", location)
	}
	if _, found, _ := store.Get("clip-one"); found {
		t.Error("record still present after delete")
	}

	// 删除不存在的 slug 同样成功（幂等）
	w = postForm(r, "/delete?key=admin-secret", url.Values{"id": {"clip-one"}})
	if w.Code != http.StatusSeeOther {
		t.Errorf("expected status 303 for repeated delete, got %d", w.Code)
	}
}
