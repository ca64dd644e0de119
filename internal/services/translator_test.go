package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranslateReturnsServiceText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key123" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translatedText":"permissão negada"}`))
	}))
	defer srv.Close()

	tr := NewTranslator("key123", srv.URL)
	got := tr.Translate(context.Background(), "permission denied")
	if got != "permissão negada" {
		t.Fatalf("Translate = %q, want translated text", got)
	}
}

func TestTranslateFailuresKeepOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	original := "falha ao salvar registro"

	tr := NewTranslator("key123", srv.URL)
	if got := tr.Translate(context.Background(), original); got != original {
		t.Fatalf("Translate on 500 = %q, want original", got)
	}

	srv.Close()
	if got := tr.Translate(context.Background(), original); got != original {
		t.Fatalf("Translate on dead server = %q, want original", got)
	}
}

func TestTranslateWithoutKeyIsNoop(t *testing.T) {
	tr := NewTranslator("", "")
	if got := tr.Translate(context.Background(), "mensagem"); got != "mensagem" {
		t.Fatalf("Translate without key = %q, want passthrough", got)
	}
}
