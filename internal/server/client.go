package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// handleClient serves the player web client from fsys. Paths that are not a
// file get index.html so the client's router can resolve them.
func handleClient(fsys fs.FS) http.HandlerFunc {
	files := http.FileServerFS(fsys)

	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if info, err := fs.Stat(fsys, name); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		http.ServeFileFS(w, r, fsys, "index.html")
	}
}
