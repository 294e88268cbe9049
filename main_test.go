package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"kartbook/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerChainSetsHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	newHandler(inner).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenStores(t *testing.T) {
	ctx := context.Background()

	st, err := openStores(ctx, &config.Config{StoreDriver: "memory"})
	require.NoError(t, err)
	s, err := st.settings.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, s.TimeslotDuration)
	assert.NoError(t, st.close(ctx))

	_, err = openStores(ctx, &config.Config{StoreDriver: "sqlite"})
	assert.ErrorContains(t, err, "sqlite")
}
