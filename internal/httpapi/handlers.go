package httpapi

import (
	"net/http"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Sprites serves user-supplied images from dir under /sprites/.
func Sprites(dir string) http.Handler {
	return http.StripPrefix("/sprites", http.FileServer(http.Dir(dir)))
}
