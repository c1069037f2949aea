package service

import (
	"context"
	"medialink-go/internal/dto"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLinkService_Register_OverrideFilenameWins(t *testing.T) {
	store := newMemLinkStore()
	svc := NewLinkService(store)

	link, err := svc.Register(context.Background(), dto.GenerateLinkRequest{
		UpstreamURL: "https://ex.com/a.bin",
		SecretKey:   "s3cret",
		CustomLabel: "Clip One",
		Filename:    "clip.mp4",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.Slug != "clip-one" {
		t.Errorf("expected slug %q, got %q", "clip-one", link.Slug)
	}
	if link.Filename != "clip.mp4" {
		t.Errorf("expected filename %q, got %q", "clip.mp4", link.Filename)
	}

	stored, found, _ := store.Get("clip-one")
	if !found {
		t.Fatal("expected record to be persisted")
	}
	if stored.UpstreamURL != "https://ex.com/a.bin" || stored.SecretKey != "s3cret" {
		t.Errorf("unexpected stored record: %+v", stored)
	}
}

func TestLinkService_Register_ProbeDerivesExtension(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD probe, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "video/webm")
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	svc := NewLinkService(newMemLinkStore())
	link, err := svc.Register(context.Background(), dto.GenerateLinkRequest{
		UpstreamURL: upstream.URL,
		SecretKey:   "s3cret",
		CustomLabel: "My Movie! 2023",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.Filename != "my-movie-2023.webm" {
		t.Errorf("expected filename %q, got %q", "my-movie-2023.webm", link.Filename)
	}
}

func TestLinkService_Register_ProbeFailureFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		close   bool
	}{
		{
			name: "non_success_status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "unreachable_upstream",
			handler: func(w http.ResponseWriter, r *http.Request) {
			},
			close: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(tt.handler)
			url := upstream.URL
			if tt.close {
				upstream.Close()
			} else {
				defer upstream.Close()
			}

			svc := NewLinkService(newMemLinkStore())
			link, err := svc.Register(context.Background(), dto.GenerateLinkRequest{
				UpstreamURL: url,
				SecretKey:   "s3cret",
				CustomLabel: "clip",
			})
			// 探测失败不阻断注册，文件名回退到默认扩展名
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if link.Filename != "clip.mp4" {
				t.Errorf("expected fallback filename %q, got %q", "clip.mp4", link.Filename)
			}
		})
	}
}

func TestLinkService_Register_SlugTaken(t *testing.T) {
	svc := NewLinkService(newMemLinkStore())

	first := dto.GenerateLinkRequest{
		UpstreamURL: "https://ex.com/a.bin",
		SecretKey:   "s3cret",
		CustomLabel: "Clip One",
		Filename:    "a.mp4",
	}
	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 不同原始标签归一化到同一 slug，第二次注册必须冲突
	second := dto.GenerateLinkRequest{
		UpstreamURL: "https://ex.com/b.bin",
		SecretKey:   "other",
		CustomLabel: "clip   one!!",
		Filename:    "b.mp4",
	}
	_, err := svc.Register(context.Background(), second)
	if err == nil {
		t.Fatal("expected SlugTaken error")
	}
	assertAppErrorCode(t, err, http.StatusConflict)

	// 原记录不可被覆盖
	stored, _, _ := svc.store.Get("clip-one")
	if stored.UpstreamURL != "https://ex.com/a.bin" {
		t.Errorf("first registration was overwritten: %+v", stored)
	}
}

func TestLinkService_Register_Validation(t *testing.T) {
	svc := NewLinkService(newMemLinkStore())
	tests := []struct {
		name string
		req  dto.GenerateLinkRequest
	}{
		{
			name: "empty_url",
			req:  dto.GenerateLinkRequest{SecretKey: "k", CustomLabel: "clip"},
		},
		{
			name: "empty_key",
			req:  dto.GenerateLinkRequest{UpstreamURL: "https://ex.com/a", CustomLabel: "clip"},
		},
		{
			name: "unnormalizable_label",
			req:  dto.GenerateLinkRequest{UpstreamURL: "https://ex.com/a", SecretKey: "k", CustomLabel: "!!!"},
		},
		{
			name: "empty_label",
			req:  dto.GenerateLinkRequest{UpstreamURL: "https://ex.com/a", SecretKey: "k", CustomLabel: ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			assertAppErrorCode(t, err, http.StatusBadRequest)
		})
	}
}

func TestLinkService_Delete_Idempotent(t *testing.T) {
	store := newMemLinkStore()
	svc := NewLinkService(store)

	if _, err := svc.Register(context.Background(), dto.GenerateLinkRequest{
		UpstreamURL: "https://ex.com/a.bin",
		SecretKey:   "s3cret",
		CustomLabel: "clip",
		Filename:    "a.mp4",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete("clip"); err != nil {
		t.Errorf("first delete failed: %v", err)
	}
	// 第二次删除同样成功
	if err := svc.Delete("clip"); err != nil {
		t.Errorf("second delete failed: %v", err)
	}

	if _, found, _ := store.Get("clip"); found {
		t.Error("record still present after delete")
	}
}
