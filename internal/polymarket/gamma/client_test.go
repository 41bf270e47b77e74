package gamma

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListNew(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "1000" || q.Get("closed") != "false" || q.Get("order") != "createdAt" || q.Get("ascending") != "false" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[
			{"id":"1","question":"New Market A","conditionId":"0xa","slug":"new-a","volume":"1000"},
			{"id":"2","question":"New Market B","conditionId":"0xb","slug":"new-b","volume":"500"}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	markets, err := c.ListNew(context.Background(), 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("got %d markets, want 2", len(markets))
	}
	if markets[0].Question != "New Market A" || markets[0].Volume != "1000" {
		t.Errorf("first market = %+v", markets[0])
	}
}

func TestListNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", 500, `{}`},
		{"malformed body", 200, `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			if _, err := New(srv.URL).ListNew(context.Background(), 10); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
