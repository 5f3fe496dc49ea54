package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lyri-learn/backend/internal/annotate"
	"github.com/lyri-learn/backend/internal/langs"
)

type TranslateHandler struct {
	annotator *annotate.Annotator
}

func NewTranslateHandler(annotator *annotate.Annotator) *TranslateHandler {
	return &TranslateHandler{annotator: annotator}
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Translate handles arbitrary-text translation outside the document
// pipeline. Results share the annotation cache.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text required", http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		req.Source = "auto"
	}
	if !langs.Known(req.Target) {
		jsonError(w, "unsupported target language: "+req.Target, http.StatusBadRequest)
		return
	}

	translated, err := h.annotator.AnnotateLine(r.Context(), req.Text, langs.Normalize(req.Source), langs.Normalize(req.Target))
	if err != nil {
		jsonError(w, "translation failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	jsonResponse(w, map[string]string{"text": translated}, http.StatusOK)
}
