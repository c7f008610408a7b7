package http

import (
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestServeMainApp(t *testing.T) {
	frontend := fstest.MapFS{
		"index.html": {Data: []byte("<!DOCTYPE html><title>F1 Insights</title>")},
		"app.css":    {Data: []byte("body{margin:0}")},
	}

	w := get(t, ServeMainApp(frontend), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "F1 Insights")

	w = get(t, ServeStatic(frontend), "/app.css")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "margin:0")

	w = get(t, ServeStatic(frontend), "/drivers/44")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "F1 Insights")
}

func TestServeMainAppWithoutFrontend(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(t, ServeMainApp(nil), "/").Code)
	assert.Equal(t, http.StatusNotFound, get(t, ServeStatic(nil), "/app.css").Code)
}
