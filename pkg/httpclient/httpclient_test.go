package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type testResource struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetResource(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		allowed []int
		want    testResource
		wantErr bool
	}{
		{"ok", 200, `{"name":"a","count":2}`, []int{200}, testResource{Name: "a", Count: 2}, false},
		{"disallowed status", 404, `{}`, []int{200}, testResource{}, true},
		{"allowed non-200", 201, `{"name":"b"}`, []int{200, 201}, testResource{Name: "b"}, false},
		{"malformed body", 200, `{"name":`, []int{200}, testResource{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := GetResource[testResource](srv.Client(), srv.URL, "/resource", tt.allowed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetResourceSlice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"a"},{"name":"b"}]`))
	}))
	defer srv.Close()

	got, err := GetResource[[]testResource](srv.Client(), srv.URL, "/resources", []int{200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Errorf("got %+v", got)
	}
}
