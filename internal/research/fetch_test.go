package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPageReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>acme</html>"))
	}))
	defer srv.Close()

	body, err := FetchPage(context.Background(), srv.Client(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "<html>acme</html>", body)
}

func TestFetchPageTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := FetchPage(context.Background(), srv.Client(), srv.URL, 50*time.Millisecond)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchPageNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := FetchPage(context.Background(), srv.Client(), srv.URL, time.Second)
	assert.Error(t, err)
}
