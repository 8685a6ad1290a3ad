package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallPostsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		data, _ := body["data"].(map[string]interface{})
		assert.Equal(t, "1", data["product_id"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title": "Widget"}`))
	}))
	defer srv.Close()

	c := NewClient(2 * time.Second)
	resp, err := c.Call(context.Background(), srv.URL, "/products/1", map[string]interface{}{"product_id": "1"})
	assert.NoError(t, err)
	assert.True(t, resp.OK())
	assert.JSONEq(t, `{"title": "Widget"}`, string(resp.Body))
}

func TestCallReturnsErrorStatusAsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error": "down"}`))
	}))
	defer srv.Close()

	c := NewClient(2 * time.Second)
	resp, err := c.Call(context.Background(), srv.URL, "/x", nil)
	assert.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.JSONEq(t, `{"error": "down"}`, string(resp.Body))
}

func TestCallTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(time.Second)
	_, err := c.Call(context.Background(), srv.URL, "/x", nil)
	assert.Error(t, err)
}

func TestNormalizeBody(t *testing.T) {
	assert.Equal(t, "null", string(normalizeBody(nil)))
	assert.Equal(t, "null", string(normalizeBody([]byte("  "))))
	assert.Equal(t, `{"a":1}`, string(normalizeBody([]byte(` {"a":1} `))))
	assert.JSONEq(t, `{"raw": "plain text"}`, string(normalizeBody([]byte("plain text"))))
}
