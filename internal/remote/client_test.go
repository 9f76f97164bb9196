package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, "test-token")
	require.NoError(t, err)
	// Keep retries fast in tests
	c.retry = RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2.0}
	return c
}

func pageJSON(id, title, body string, version int) string {
	env := pageEnvelope{
		ID:      id,
		Type:    "page",
		Title:   title,
		Version: versionField{Number: version},
		Body:    bodyField{Storage: storageField{Value: body, Representation: "storage"}},
	}
	data, _ := json.Marshal(env)
	return string(data)
}

func TestGetPage(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/api/content/12345", r.URL.Path)
		assert.Equal(t, "body.storage,version", r.URL.Query().Get("expand"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(pageJSON("12345", "Certificates", "<h1>page</h1>", 7)))
	}))

	page, err := c.GetPage(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", page.ID)
	assert.Equal(t, "Certificates", page.Title)
	assert.Equal(t, "<h1>page</h1>", page.Body)
	assert.Equal(t, 7, page.Version)
}

func TestGetPage_NotFound(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.GetPage(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrPageNotFound))
}

func TestUpdatePage_BumpsVersion(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)

		var env pageEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		assert.Equal(t, "page", env.Type)
		assert.Equal(t, 8, env.Version.Number)
		assert.Equal(t, "storage", env.Body.Storage.Representation)

		_, _ = w.Write([]byte(pageJSON(env.ID, env.Title, env.Body.Storage.Value, env.Version.Number)))
	}))

	saved, err := c.UpdatePage(context.Background(), &Page{
		ID: "12345", Title: "Certificates", Body: "<h1>new</h1>", Version: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, saved.Version)
	assert.Equal(t, "<h1>new</h1>", saved.Body)
}

func TestUpdatePage_VersionConflictIsTerminal(t *testing.T) {
	var calls int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))

	_, err := c.UpdatePage(context.Background(), &Page{ID: "12345", Version: 7})
	assert.True(t, errors.Is(err, ErrVersionConflict))
	// Conflicts must not be retried at this level
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetPage_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(pageJSON("1", "t", "b", 1)))
	}))

	page, err := c.GetPage(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Version)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetPage_BadRequestNotRetried(t *testing.T) {
	var calls int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.GetPage(context.Background(), "1")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "token")
	assert.True(t, errors.Is(err, ErrNoBaseURL))
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	_, err := NewFromEnv()
	assert.True(t, errors.Is(err, ErrNoBaseURL))

	t.Setenv(EnvBaseURL, "http://wiki.internal")
	t.Setenv(EnvAPIToken, "tok")
	c, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://wiki.internal", c.baseURL)
}
