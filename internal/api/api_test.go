package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/listing"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

const (
	testJWTSecret = "test-secret"
	testOrigin    = "https://najdeno.example"
)

type failingStore struct{}

func (failingStore) Select(context.Context, model.Query) ([]model.Record, error) {
	return nil, errors.New("store unavailable")
}

func (failingStore) Insert(context.Context, string, model.Record) error {
	return errors.New("store unavailable")
}

type testEnv struct {
	server *httptest.Server
}

func setupTestServer(t *testing.T, records listing.Store) *testEnv {
	t.Helper()
	if records == nil {
		records = store.NewRecords(db.NewTestDB(t))
	}

	env := &testEnv{}
	router := NewRouter(&ItemsHandler{
		Store:     records,
		Submitter: listing.NewSubmitter(records, nil, nil),
	}, testJWTSecret, []string{testOrigin})

	env.server = httptest.NewServer(Chain().Then(router))
	t.Cleanup(env.server.Close)
	return env
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func walletFields(kind string) map[string]string {
	return map[string]string{
		"type":          kind,
		"title":         "Wallet",
		"description":   "Brown leather",
		"category":      "Accessories",
		"location":      "Library",
		"date":          "2024-01-05",
		"contact_name":  "Ana",
		"contact_email": "ana@x.com",
		"contact_phone": "",
	}
}

func TestCreateAndListItems(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := postJSON(t, env.server.URL+"/api/items", "", walletFields("lost"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decodeBody[map[string]string](t, resp)
	if created["message"] != "lost item added successfully!" {
		t.Errorf("unexpected message %q", created["message"])
	}

	resp, err := http.Get(env.server.URL + "/api/items/lost")
	if err != nil {
		t.Fatalf("GET lost items: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	records := decodeBody[[]model.Record](t, resp)
	if len(records) != 1 {
		t.Fatalf("expected 1 lost item, got %d", len(records))
	}
	rec := records[0]
	if rec.Title != "Wallet" || rec.DateLost == nil || *rec.DateLost != "2024-01-05" {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.DateFound != nil || rec.PhotoURL != nil {
		t.Errorf("expected null found date and photo, got %+v", rec)
	}
	if rec.ID == "" || rec.Status != model.StatusActive {
		t.Errorf("expected store-assigned id and active status, got %+v", rec)
	}

	resp, _ = http.Get(env.server.URL + "/api/items/found")
	if found := decodeBody[[]model.Record](t, resp); len(found) != 0 {
		t.Errorf("expected no found items, got %d", len(found))
	}
}

func TestCreateItemUserFromToken(t *testing.T) {
	env := setupTestServer(t, nil)
	token, err := auth.GenerateToken(testJWTSecret, "user-42", "ana@x.com", 0)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	resp := postJSON(t, env.server.URL+"/api/items", token, walletFields("lost"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, _ = http.Get(env.server.URL + "/api/items/lost")
	records := decodeBody[[]model.Record](t, resp)
	if len(records) != 1 || records[0].UserID != "user-42" {
		t.Errorf("expected user id from token, got %+v", records)
	}
}

func TestCreateItemStoreFailure(t *testing.T) {
	env := setupTestServer(t, failingStore{})

	resp := postJSON(t, env.server.URL+"/api/items", "", walletFields("lost"))
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["error"] != listing.FailureMessage {
		t.Errorf("unexpected error %q", body["error"])
	}
}

func TestCreateItemBadBody(t *testing.T) {
	env := setupTestServer(t, nil)

	for _, body := range []string{"not json", `{"title": 5}`, "null"} {
		resp, err := http.Post(env.server.URL+"/api/items", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestListItems(t *testing.T) {
	tests := []struct {
		name   string
		store  listing.Store
		kind   string
		status int
	}{
		{"lost", nil, "lost", http.StatusOK},
		{"found", nil, "found", http.StatusOK},
		{"unknown kind", nil, "stolen", http.StatusNotFound},
		{"store failure", failingStore{}, "lost", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestServer(t, tt.store)
			resp, err := http.Get(env.server.URL + "/api/items/" + tt.kind)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, env.server.URL+"/api/items", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Errorf("expected allowed origin %q, got %q", testOrigin, got)
	}

	req, _ = http.NewRequest(http.MethodGet, env.server.URL+"/api/items/lost", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for unknown origin, got %q", got)
	}
}

func TestSecureHeaders(t *testing.T) {
	env := setupTestServer(t, nil)

	resp, err := http.Get(env.server.URL + "/api/items/lost")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-Frame-Options"); got != "deny" {
		t.Errorf("expected X-Frame-Options deny, got %q", got)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	handler := Chain().ThenFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
