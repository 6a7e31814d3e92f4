package explain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExplainNoURLDegrades(t *testing.T) {
	c := NewClient("", 0)
	res := c.Explain(context.Background(), FromTrendRow("Potholes", "rising", 14, 100, 160, 60.0))
	if res.Available {
		t.Fatalf("Available = true with no service configured")
	}
	if res.Explanation == "" {
		t.Fatalf("fallback explanation must not be empty")
	}
}

func TestExplainSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(`{"explanation":"Volume grew 60% over the prior two weeks."}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res := c.Explain(context.Background(), FromTrendRow("Potholes", "rising", 14, 100, 160, 60.0))
	if !res.Available {
		t.Fatalf("Available = false, want true: %+v", res)
	}
	if res.Explanation != "Volume grew 60% over the prior two weeks." {
		t.Errorf("explanation = %q", res.Explanation)
	}
}

func TestExplainNonOKStatusDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res := c.Explain(context.Background(), FromChronicRow("Garbage Not Collected", 4, 120))
	if res.Available {
		t.Fatalf("Available = true on a 502")
	}
}

func TestExplainUnreachableServiceDegrades(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	res := c.Explain(context.Background(), FromWardRiskRow("Ward 12", "HIGH", 14, 20, 40, 100.0))
	if res.Available {
		t.Fatalf("Available = true for an unreachable service")
	}
	if res.Explanation == "" {
		t.Fatalf("fallback explanation must not be empty")
	}
}

func TestExplainEmptyBodyDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res := c.Explain(context.Background(), FromTrendRow("Potholes", "rising", 14, 10, 20, 100))
	if res.Available {
		t.Fatalf("Available = true for an empty explanation body")
	}
}
