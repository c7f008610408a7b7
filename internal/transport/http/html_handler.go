package http

import (
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// ServeMainApp serves index.html from the embedded frontend
func ServeMainApp(frontend fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if frontend == nil {
			http.Error(w, "Main application page not found", http.StatusNotFound)
			return
		}
		serveHTML(w, r, frontend, "index.html")
	}
}

// ServeStatic serves the remaining frontend assets. Unknown paths fall
// back to index.html so the page can handle its own navigation.
func ServeStatic(frontend fs.FS) http.HandlerFunc {
	if frontend == nil {
		return http.NotFound
	}
	files := http.FileServer(http.FS(frontend))

	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" || name == "index.html" {
			serveHTML(w, r, frontend, "index.html")
			return
		}
		if _, err := fs.Stat(frontend, name); err != nil {
			serveHTML(w, r, frontend, "index.html")
			return
		}
		files.ServeHTTP(w, r)
	}
}

// serveHTML renders an HTML template from the frontend with proper headers
func serveHTML(w http.ResponseWriter, r *http.Request, frontend fs.FS, name string) {
	tmpl, err := template.ParseFS(frontend, name)
	if err != nil {
		http.Error(w, "Error loading page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	if err := tmpl.Execute(w, nil); err != nil {
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
}
