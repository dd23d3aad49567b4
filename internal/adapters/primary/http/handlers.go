package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing left to do
		_ = err
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// renderedSlideDTO is the wire shape of a pre-rendered slide.
type renderedSlideDTO struct {
	Index   int    `json:"index"`
	Layout  string `json:"layout"`
	HTML    string `json:"html"`
	Classes string `json:"classes"`
	Notes   string `json:"notes"`
}

func toDTO(rs ports.RenderedSlide) renderedSlideDTO {
	dto := renderedSlideDTO{
		Index:   rs.Index,
		HTML:    string(rs.HTML),
		Classes: rs.Classes,
	}
	if rs.Slide != nil {
		dto.Layout = rs.Slide.Layout()
		dto.Notes = rs.Slide.Notes()
	}
	return dto
}

// handleDeck returns the loaded deck together with its rendered slides.
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	deck := s.session.Deck()
	rendered, err := s.renderer.RenderDeck(r.Context(), deck)
	if err != nil {
		s.logger.Error("Rendering deck: %v", err)
		writeError(w, http.StatusInternalServerError, "rendering deck")
		return
	}

	slides := make([]renderedSlideDTO, 0, len(rendered))
	for _, rs := range rendered {
		slides = append(slides, toDTO(rs))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deck":   deck,
		"slides": slides,
		"state":  s.session.Snapshot(),
	})
}

// handleDeckImport replaces the deck from an uploaded JSON or YAML document.
// A non-array document is rejected and the live deck stays untouched.
func (s *Server) handleDeckImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.assetCfg.GetMaxSize()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body")
		return
	}

	deck, err := s.decks.Import(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.session.ReplaceDeck(deck)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": deck.Len(),
		"state": s.session.Snapshot(),
	})
}

// handleState returns the full session snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// navigateRequest is the navigation endpoint's body: either a target index,
// a named action, or a raw key event.
type navigateRequest struct {
	Index  *int   `json:"index,omitempty"`
	Action string `json:"action,omitempty"`
	Key    string `json:"key,omitempty"`
	Shift  bool   `json:"shiftKey,omitempty"`
	Alt    bool   `json:"altKey,omitempty"`
	Ctrl   bool   `json:"ctrlKey,omitempty"`
}

// actionFromName maps the wire action names back to navigation actions.
func actionFromName(name string) entities.Action {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "next":
		return entities.ActionNext
	case "prev":
		return entities.ActionPrev
	case "first":
		return entities.ActionFirst
	case "last":
		return entities.ActionLast
	case "fullscreen":
		return entities.ActionToggleFullscreen
	case "blackout":
		return entities.ActionToggleBlackout
	case "timer":
		return entities.ActionToggleTimer
	case "timer_reset":
		return entities.ActionResetTimer
	case "overview":
		return entities.ActionToggleOverview
	case "help":
		return entities.ActionToggleHelp
	case "notes":
		return entities.ActionToggleNotes
	default:
		return entities.ActionNone
	}
}

// handleNavigate moves the presentation. Accepts {"index":N},
// {"action":"next"}, or a forwarded key event.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid navigation request")
		return
	}

	changed := false
	switch {
	case req.Index != nil:
		changed = s.session.GoTo(*req.Index)
	case req.Action != "":
		action := actionFromName(req.Action)
		if action == entities.ActionNone {
			writeError(w, http.StatusBadRequest, "unknown action: "+req.Action)
			return
		}
		changed = s.session.Apply(action)
	case req.Key != "":
		changed = s.session.HandleKey(entities.NavIntent{
			Key:   req.Key,
			Shift: req.Shift,
			Alt:   req.Alt,
			Ctrl:  req.Ctrl,
		})
	default:
		writeError(w, http.StatusBadRequest, "index, action, or key required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"changed": changed,
		"state":   s.session.Snapshot(),
	})
}

// handleTimer controls the presentation timer.
func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid timer request")
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "start":
		s.session.StartTimer()
	case "stop":
		s.session.StopTimer()
	case "reset":
		s.session.ResetTimer()
	case "toggle":
		s.session.Apply(entities.ActionToggleTimer)
	default:
		writeError(w, http.StatusBadRequest, "unknown timer action: "+req.Action)
		return
	}

	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// handleSettingsGet returns the current settings.
func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Settings())
}

// handleSettingsPut replaces the settings.
func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var settings entities.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings")
		return
	}
	if err := s.session.UpdateSettings(settings); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.session.Settings())
}

// handleAssetUpload accepts multipart file uploads, stores the bytes in
// memory, and registers each file with the asset resolver so slide fields
// referencing the filename pick it up.
func (s *Server) handleAssetUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.assetCfg.GetMaxSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "parsing upload: "+err.Error())
		return
	}
	if r.MultipartForm == nil {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	registered := make(map[string]string)
	var importedDeck *entities.Deck
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "opening upload: "+err.Error())
				return
			}
			data, err := io.ReadAll(file)
			_ = file.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
				return
			}

			href := s.assets.Put(header.Filename, data, header.Header.Get("Content-Type"))
			registered[header.Filename] = href

			// A deck document in the batch replaces the live deck; anything
			// that fails to parse stays registered as a plain asset.
			if isDeckDocument(header.Filename) {
				if deck, err := s.decks.Import(data); err == nil {
					importedDeck = deck
				}
			}
		}
	}
	if len(registered) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	s.resolver.RegisterBatch(registered)

	response := map[string]interface{}{"assets": registered}
	if importedDeck != nil {
		s.session.ReplaceDeck(importedDeck)
		response["deck_slides"] = len(importedDeck.Slides)
	}
	writeJSON(w, http.StatusOK, response)
}

// isDeckDocument reports whether an uploaded filename looks like a deck file.
func isDeckDocument(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".json") ||
		strings.HasSuffix(lower, ".yaml") ||
		strings.HasSuffix(lower, ".yml")
}

// handleAssetGet serves an uploaded asset from memory, falling back to the
// configured assets directory on disk.
func (s *Server) handleAssetGet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if data, contentType, ok := s.assets.Get(name); ok {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(data)
		return
	}

	s.serveDiskAsset(w, r, name)
}

// handleEmbed serves an embedded document with the bridge block injected.
// When the document cannot be loaded server-side, the client is redirected
// to the plain resolved source so external pages still display.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if src == "" {
		writeError(w, http.StatusBadRequest, "src required")
		return
	}

	doc, err := s.bridge.Enhance(r.Context(), src)
	if err != nil {
		s.logger.Warn("Embed enhancement failed for %q, falling back: %v", src, err)
		http.Redirect(w, r, s.bridge.ResolvedSrc(src), http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, doc)
}

// --- Template library ---

func (s *Server) handleTemplatesList(w http.ResponseWriter, r *http.Request) {
	templates, err := s.library.ListTemplates()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleTemplateSave(w http.ResponseWriter, r *http.Request) {
	var t entities.Template
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid template")
		return
	}
	saved, err := s.library.SaveTemplate(t)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleTemplateDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.library.DeleteTemplate(mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTemplatesExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.library.ExportTemplates()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="templates.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleTemplatesImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.assetCfg.GetMaxSize()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body")
		return
	}
	templates, err := s.library.ImportTemplates(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(templates)})
}

// --- Theme library ---

func (s *Server) handleThemesList(w http.ResponseWriter, r *http.Request) {
	themes, err := s.library.ListThemes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, themes)
}

func (s *Server) handleThemeSave(w http.ResponseWriter, r *http.Request) {
	var t entities.Theme
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid theme")
		return
	}
	saved, err := s.library.SaveTheme(t)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Saving the active theme re-applies it so open clients restyle
	if saved.ID == s.session.ActiveTheme().ID {
		_ = s.session.SetActiveTheme(saved)
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleThemeDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.library.DeleteTheme(mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleThemesExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.library.ExportThemes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="themes.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleThemesImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.assetCfg.GetMaxSize()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body")
		return
	}
	themes, err := s.library.ImportThemes(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(themes)})
}

// handleThemeApply switches the active theme to a stored one.
func (s *Server) handleThemeApply(w http.ResponseWriter, r *http.Request) {
	theme, err := s.library.GetTheme(mux.Vars(r)["id"])
	if err != nil {
		if err == ports.ErrNotFound {
			writeError(w, http.StatusNotFound, "theme not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.session.SetActiveTheme(theme); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}
