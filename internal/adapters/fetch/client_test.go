package fetch_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hotel_reputation/internal/adapters/fetch"
	"hotel_reputation/internal/domain"
)

func TestClient_Fetch_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			_, _ = io.WriteString(w, `<div data-testid="review-score-component">8.6</div>`)
		}
	}))
	defer ts.Close()

	cl := fetch.New(100, time.Second) // high RPS for tests
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got, err := cl.Fetch(ctx, domain.FetchRequest{URL: ts.URL})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != `<div data-testid="review-score-component">8.6</div>` {
		t.Fatalf("unexpected payload: %q", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Fetch_PostsBodyAndHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("X-Goog-Api-Key") != "k" || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("headers = %v", r.Header)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"textQuery":"PortoBay"}` {
			t.Errorf("body = %s", b)
		}
		_, _ = io.WriteString(w, `{"places":[]}`)
	}))
	defer ts.Close()

	cl := fetch.New(100, time.Second)
	got, err := cl.Fetch(context.Background(), domain.FetchRequest{
		Method:  http.MethodPost,
		URL:     ts.URL,
		Body:    `{"textQuery":"PortoBay"}`,
		Headers: map[string]string{"X-Goog-Api-Key": "k"},
	})
	if err != nil || got != `{"places":[]}` {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestClient_Fetch_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl := fetch.New(100, time.Second)
	_, err := cl.Fetch(context.Background(), domain.FetchRequest{URL: ts.URL})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClient_Fetch_Forbidden(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := fetch.New(100, time.Second).Fetch(context.Background(), domain.FetchRequest{URL: ts.URL})
	if !errors.Is(err, fetch.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestClient_FetchFirst_FallsBackOnNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer ts.Close()

	cl := fetch.New(100, time.Second)
	got, err := cl.FetchFirst(context.Background(), []domain.FetchRequest{
		{URL: ts.URL + "/old"},
		{URL: ts.URL + "/new"},
	})
	if err != nil || got != "ok" {
		t.Fatalf("got %q, %v", got, err)
	}
}
