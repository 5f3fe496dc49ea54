package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lyri-learn/backend/internal/build"
	"github.com/lyri-learn/backend/internal/db"
	"github.com/lyri-learn/backend/internal/document"
	"github.com/lyri-learn/backend/internal/langs"
)

type SongsHandler struct {
	db      *db.Database
	builder *build.Service
}

func NewSongsHandler(database *db.Database, builder *build.Service) *SongsHandler {
	return &SongsHandler{db: database, builder: builder}
}

type createSongRequest struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// Create registers a song for annotation. The document itself is built
// lazily on first fetch.
func (h *SongsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Artist = strings.TrimSpace(req.Artist)
	if req.Title == "" || req.Artist == "" {
		jsonError(w, "title and artist required", http.StatusBadRequest)
		return
	}
	if !langs.Known(req.TargetLang) {
		jsonError(w, "unsupported target language: "+req.TargetLang, http.StatusBadRequest)
		return
	}
	sourceLang := langs.Normalize(req.SourceLang)
	if sourceLang == "" {
		sourceLang = "auto"
	}

	song := document.Song{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Artist:     req.Artist,
		SourceLang: sourceLang,
		TargetLang: langs.Normalize(req.TargetLang),
	}
	if err := h.db.CreateSong(song); err != nil {
		jsonError(w, "failed to create song", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, song, http.StatusCreated)
}

func (h *SongsHandler) List(w http.ResponseWriter, r *http.Request) {
	songs, err := h.db.ListSongs()
	if err != nil {
		jsonError(w, "failed to list songs", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, songs, http.StatusOK)
}

func (h *SongsHandler) Get(w http.ResponseWriter, r *http.Request) {
	song, err := h.db.GetSong(chi.URLParam(r, "id"))
	if err != nil {
		if err == sql.ErrNoRows {
			jsonError(w, "song not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load song", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, song, http.StatusOK)
}

// Rebuild drops stored builds for a song so the next document request runs
// the pipeline again. Annotation cache entries stay: they are
// content-addressed and remain valid.
func (h *SongsHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.db.GetSong(id); err != nil {
		jsonError(w, "song not found", http.StatusNotFound)
		return
	}
	if err := h.db.DeleteDocuments(id); err != nil {
		jsonError(w, "failed to drop documents", http.StatusInternalServerError)
		return
	}
	h.builder.Invalidate(id)
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}
