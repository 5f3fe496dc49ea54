package handlers

import (
	"net/http"

	"github.com/lyri-learn/backend/internal/langs"
)

// Languages lists supported languages with per-language POS support flags,
// for the language picker.
func Languages(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, langs.List(), http.StatusOK)
}
