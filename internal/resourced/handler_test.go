package resourced

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) (*httptest.Server, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := httptest.NewServer(NewHandler(store, logger).Routes())
	t.Cleanup(server.Close)
	return server, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeDoc(t *testing.T, resp *http.Response) Document {
	t.Helper()
	doc := Document{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return doc
}

func TestHandlerCRUD(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("create and fetch document", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/offers", Document{"title": "Goエンジニア", "status": "active"})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		created := decodeDoc(t, resp)
		id, _ := created["id"].(string)
		if id == "" {
			t.Fatal("expected assigned id")
		}

		resp = doJSON(t, http.MethodGet, server.URL+"/offers/"+id, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if got := decodeDoc(t, resp); got["title"] != "Goエンジニア" {
			t.Errorf("unexpected document: %v", got)
		}
	})

	t.Run("list with equality filter", func(t *testing.T) {
		doJSON(t, http.MethodPost, server.URL+"/users", Document{"email": "a@example.com", "password": "x", "role": "candidate"})
		doJSON(t, http.MethodPost, server.URL+"/users", Document{"email": "b@example.com", "password": "y", "role": "company"})

		resp := doJSON(t, http.MethodGet, server.URL+"/users?email=a@example.com&password=x", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var docs []Document
		if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		if len(docs) != 1 || docs[0]["email"] != "a@example.com" {
			t.Errorf("unexpected result: %v", docs)
		}
	})

	t.Run("patch merges fields", func(t *testing.T) {
		server, store := newTestServer(t)
		if _, err := store.Create(context.Background(), "applications", Document{"id": "a1", "status": "pending", "offer_id": "o1"}); err != nil {
			t.Fatalf("seed: %v", err)
		}

		resp := doJSON(t, http.MethodPatch, server.URL+"/applications/a1", Document{"status": "accepted"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		patched := decodeDoc(t, resp)
		if patched["status"] != "accepted" || patched["offer_id"] != "o1" {
			t.Errorf("unexpected patched document: %v", patched)
		}
	})

	t.Run("missing document returns 404 with message", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/offers/missing", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
		body := decodeDoc(t, resp)
		if body["message"] == "" || body["message"] == nil {
			t.Error("expected error message in body")
		}
	})

	t.Run("unknown collection returns 404", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/secrets", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("invalid JSON returns 400", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, server.URL+"/offers", bytes.NewReader([]byte("{broken")))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("do request: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("delete removes document", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/offers", Document{"id": "del-1", "title": "削除対象"})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodDelete, server.URL+"/offers/del-1", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodGet, server.URL+"/offers/del-1", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
		}
	})
}
