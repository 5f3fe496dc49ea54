package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lyri-learn/backend/internal/build"
	"github.com/lyri-learn/backend/internal/document"
)

type DocumentHandler struct {
	builder *build.Service
}

func NewDocumentHandler(builder *build.Service) *DocumentHandler {
	return &DocumentHandler{builder: builder}
}

// GetDocument returns the annotated document for a song, building it on
// first request. An empty document (no synced lyrics found) is a valid 200
// response.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.resolve(w, r)
	if !ok {
		return
	}
	jsonResponse(w, doc, http.StatusOK)
}

type activeResponse struct {
	Index int             `json:"index"`
	Line  *document.Line  `json:"line,omitempty"`
	Token *document.Token `json:"token,omitempty"`
}

// Active resolves the line (and optionally the token under the cursor) for
// a playback position. Polled once per rendering frame, so it is on the
// silent logging path. The client echoes back the returned index as `hint`
// to keep forward playback O(1).
func (h *DocumentHandler) Active(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.resolve(w, r)
	if !ok {
		return
	}

	t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil {
		jsonError(w, "invalid or missing playback time t", http.StatusBadRequest)
		return
	}

	hint := document.NoLine
	if v := r.URL.Query().Get("hint"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			hint = parsed
		}
	}

	resp := activeResponse{Index: document.ActiveLine(doc, t, hint)}
	if resp.Index != document.NoLine {
		resp.Line = &doc.Lines[resp.Index]

		// Token activation is cursor-driven: the source material carries
		// line-level timing only.
		if v := r.URL.Query().Get("cursor"); v != "" {
			if offset, err := strconv.Atoi(v); err == nil {
				if tok, ok := document.TokenAt(resp.Line, offset); ok {
					resp.Token = &tok
				}
			}
		}
	}
	jsonResponse(w, resp, http.StatusOK)
}

func (h *DocumentHandler) resolve(w http.ResponseWriter, r *http.Request) (*document.TimedDocument, bool) {
	doc, err := h.builder.Document(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("lang"))
	if err != nil {
		if errors.Is(err, build.ErrUnknownSong) {
			jsonError(w, "song not found", http.StatusNotFound)
			return nil, false
		}
		jsonError(w, "document build failed: "+err.Error(), http.StatusBadGateway)
		return nil, false
	}
	return doc, true
}
