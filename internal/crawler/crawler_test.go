package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Refund Policy</title>
  <style>body { color: red; }</style>
</head>
<body>
  <script>console.log("noise");</script>
  <h1>Refunds</h1>
  <p>Refunds are eligible within 7 days of purchase.</p>
</body>
</html>`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	page, err := New(5*time.Second).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if page.Title != "Refund Policy" {
		t.Errorf("title = %q, want %q", page.Title, "Refund Policy")
	}
	if !strings.Contains(page.Text, "Refunds are eligible within 7 days of purchase.") {
		t.Errorf("text = %q, missing body copy", page.Text)
	}
	if strings.Contains(page.Text, "console.log") || strings.Contains(page.Text, "color: red") {
		t.Error("script/style content must be stripped")
	}
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := New(5*time.Second).Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error on 404 response")
	}
}
