package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/emailbuilder/internal/metrics"
	"github.com/foxzi/emailbuilder/internal/relay"
	"github.com/foxzi/emailbuilder/internal/template"
)

// Response messages. The builder UI matches on status only, the text is for people.
const (
	msgListFailed    = "Error fetching templates"
	msgNoFile        = "No file uploaded"
	msgFileTooLarge  = "File too large"
	msgUploadFailed  = "Error uploading image"
	msgSaved         = "Email template saved successfully"
	msgSaveFailed    = "Error saving email template"
	msgUpdateFailed  = "Error updating email template"
	msgRenderFailed  = "Error rendering template"
	downloadFileName = "template.html"
)

// RenderRequest is the request body for POST /renderAndDownloadTemplate
type RenderRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.version,
		Uptime:  time.Since(s.startTime).Truncate(time.Second).String(),
	})
}

// handleListTemplates handles GET /getEmailTemplates
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list templates", "error", err)
		metrics.IncStoreErrors("list")
		sendText(w, http.StatusInternalServerError, msgListFailed)
		return
	}

	if templates == nil {
		templates = []*template.Template{}
	}
	sendJSON(w, http.StatusOK, templates)
}

// handleUploadImage handles POST /uploadImage (multipart, field "image")
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warn("upload exceeds size limit", "limit", tooLarge.Limit)
			sendError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
			return
		}
		s.logger.Warn("upload without file", "error", err)
		sendError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("failed to read uploaded file", "error", err)
		sendError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	res, err := s.relay.Upload(r.Context(), data, header.Filename)
	if err != nil {
		if errors.Is(err, relay.ErrNoFileProvided) {
			sendError(w, http.StatusBadRequest, msgNoFile)
			return
		}
		s.logger.Error("failed to upload image", "file", header.Filename, "error", err)
		sendError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	sendJSON(w, http.StatusOK, res)
}

// handleCreateTemplate handles POST /uploadEmailConfig.
// Presence of title and content is checked by the store.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var fields template.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.logger.Error("invalid template body", "error", err)
		sendText(w, http.StatusInternalServerError, msgSaveFailed)
		return
	}

	tmpl, err := s.store.Create(r.Context(), fields)
	if err != nil {
		s.logger.Error("failed to save template", "error", err)
		if errors.Is(err, template.ErrStorageUnavailable) {
			metrics.IncStoreErrors("create")
		}
		sendText(w, http.StatusInternalServerError, msgSaveFailed)
		return
	}

	metrics.IncTemplatesCreated()
	s.logger.Info("template saved", "id", tmpl.ID, "title", tmpl.Title)

	sendText(w, http.StatusOK, msgSaved)
}

// handleUpdateTemplate handles PUT /editEmailTemplate/{id}.
// An unknown id answers 200 with a JSON null body.
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields template.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.logger.Error("invalid template body", "id", id, "error", err)
		sendText(w, http.StatusInternalServerError, msgUpdateFailed)
		return
	}

	tmpl, err := s.store.UpdateByID(r.Context(), id, fields)
	if errors.Is(err, template.ErrNotFound) {
		s.logger.Warn("template not found", "id", id)
		sendJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		s.logger.Error("failed to update template", "id", id, "error", err)
		if errors.Is(err, template.ErrStorageUnavailable) {
			metrics.IncStoreErrors("update")
		}
		sendText(w, http.StatusInternalServerError, msgUpdateFailed)
		return
	}

	metrics.IncTemplatesUpdated()
	s.logger.Info("template updated", "id", tmpl.ID)

	sendJSON(w, http.StatusOK, tmpl)
}

// handleRenderTemplate handles POST /renderAndDownloadTemplate.
// Each request writes its own artifact and removes it after streaming.
func (s *Server) handleRenderTemplate(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Error("invalid render body", "error", err)
		sendText(w, http.StatusInternalServerError, msgRenderFailed)
		return
	}

	html := template.Render(req.Title, req.Content, req.Image)

	path, err := s.ws.WriteArtifact([]byte(html))
	if err != nil {
		s.logger.Error("failed to write rendered template", "error", err)
		sendText(w, http.StatusInternalServerError, msgRenderFailed)
		return
	}
	defer func() {
		if err := s.ws.Remove(path); err != nil {
			s.logger.Error("failed to remove rendered template", "path", path, "error", err)
		}
	}()

	f, err := s.ws.Open(path)
	if err != nil {
		s.logger.Error("failed to open rendered template", "path", path, "error", err)
		sendText(w, http.StatusInternalServerError, msgRenderFailed)
		return
	}
	defer f.Close()

	modTime := time.Now()
	if info, err := f.Stat(); err == nil {
		modTime = info.ModTime()
	}

	metrics.IncTemplatesRendered()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadFileName+`"`)
	http.ServeContent(w, r, downloadFileName, modTime, f)
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"error": message})
}

func sendText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(message))
}
