// Package server exposes the workflow over a local JSON HTTP API. It is the
// stand-in for the UI layer: it validates input before anything reaches the
// gateway, reports remote failures once and inline, and surfaces store
// trouble only through the storage_warning field of state responses.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"paper2diagram/convert"
	"paper2diagram/export"
	"paper2diagram/gateway"
	"paper2diagram/workflow"
)

type Server struct {
	gw    *gateway.Gateway
	store *workflow.Store
	pager convert.PageImager
}

// New wires the handler set. pager may be nil when no PDF converter is
// available; PDF uploads then fail with an explicit error.
func New(gw *gateway.Gateway, store *workflow.Store, pager convert.PageImager) (*Server, error) {
	if gw == nil {
		return nil, errors.New("gateway required")
	}
	if store == nil {
		return nil, errors.New("workflow store required")
	}
	return &Server{gw: gw, store: store, pager: pager}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/schema/generate", s.handleGenerateSchema)
	mux.HandleFunc("/api/image/render", s.handleRenderImage)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/", s.handleHistoryByID)
	mux.HandleFunc("/api/project/reset", s.handleProjectReset)
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/export/schema.md", s.handleExportSchemaMarkdown)
	mux.HandleFunc("/api/export/schema.html", s.handleExportSchemaHTML)
	mux.HandleFunc("/api/export/image", s.handleExportImage)
	return logMiddleware(mux)
}

// --- Handlers ---

type stateUpdateReq struct {
	LogicConfig     *gateway.ModelConfig `json:"logic_config,omitempty"`
	VisionConfig    *gateway.ModelConfig `json:"vision_config,omitempty"`
	Language        *string              `json:"language,omitempty"`
	CurrentStep     *int                 `json:"current_step,omitempty"`
	PaperContent    *string              `json:"paper_content,omitempty"`
	ReferenceImages *[]string            `json:"reference_images,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.store.Snapshot())
	case http.MethodPut, http.MethodPost:
		var req stateUpdateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.LogicConfig != nil {
			s.store.SetLogicConfig(*req.LogicConfig)
		}
		if req.VisionConfig != nil {
			s.store.SetVisionConfig(*req.VisionConfig)
		}
		if req.Language != nil {
			s.store.SetLanguage(*req.Language)
		}
		if req.CurrentStep != nil {
			s.store.SetCurrentStep(*req.CurrentStep)
		}
		if req.PaperContent != nil {
			s.store.SetPaperContent(*req.PaperContent)
		}
		if req.ReferenceImages != nil {
			s.store.SetReferenceImages(*req.ReferenceImages)
		}
		writeJSON(w, s.store.Snapshot())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type generateReq struct {
	PaperContent string   `json:"paper_content,omitempty"`
	InputImages  []string `json:"input_images,omitempty"`
}

func (s *Server) handleGenerateSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PaperContent != "" {
		s.store.SetPaperContent(req.PaperContent)
	}
	st := s.store.Snapshot()
	// Configuration and input errors are caught here; nothing reaches the
	// gateway without a key and some usable content.
	if st.LogicConfig.APIKey == "" {
		http.Error(w, "logic model api key is not configured", http.StatusBadRequest)
		return
	}
	if st.PaperContent == "" && len(req.InputImages) == 0 {
		http.Error(w, "no usable content: provide paper text or images", http.StatusBadRequest)
		return
	}

	res, err := s.gw.GenerateSchema(r.Context(), st.PaperContent, st.LogicConfig, req.InputImages)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.store.SetGeneratedSchema(res.Schema)
	s.store.SetCurrentStep(2)
	writeJSON(w, res)
}

func (s *Server) handleRenderImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := s.store.Snapshot()
	if st.VisionConfig.APIKey == "" {
		http.Error(w, "vision model api key is not configured", http.StatusBadRequest)
		return
	}
	if st.GeneratedSchema == "" {
		http.Error(w, "no visual schema: generate one first", http.StatusBadRequest)
		return
	}

	res, err := s.gw.RenderImage(r.Context(), st.GeneratedSchema, st.VisionConfig, st.ReferenceImages)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if res.ImageURL != "" {
		s.store.SetGeneratedImage(res.ImageURL)
		s.store.AddToHistory(st.GeneratedSchema, res.ImageURL)
		s.store.SetCurrentStep(3)
	}
	writeJSON(w, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.store.Snapshot().History)
	case http.MethodDelete:
		s.store.ClearHistory()
		writeJSON(w, s.store.Snapshot())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleHistoryByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(rest, "/load"):
		id := strings.TrimSuffix(rest, "/load")
		if _, err := s.store.LoadFromHistory(id); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, s.store.Snapshot())
	case r.Method == http.MethodDelete:
		if err := s.store.DeleteFromHistory(rest); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, s.store.Snapshot())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleProjectReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.store.ResetProject()
	writeJSON(w, s.store.Snapshot())
}

type uploadResp struct {
	Images []string `json:"images"`
}

// handleUpload converts an uploaded file to image payloads. target=reference
// stores them as renderer reference images; anything else hands them back to
// the caller for the generate step.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	images, err := convert.ToImages(r.Context(), data, header.Filename, s.pager)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if r.FormValue("target") == "reference" && len(images) > 0 {
		st := s.store.Snapshot()
		s.store.SetReferenceImages(append(st.ReferenceImages, images...))
	}
	writeJSON(w, uploadResp{Images: images})
}

func (s *Server) handleExportSchemaMarkdown(w http.ResponseWriter, r *http.Request) {
	schema := s.store.Snapshot().GeneratedSchema
	if schema == "" {
		http.Error(w, "no schema to export", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schema.md"`)
	w.Write(export.SchemaMarkdown(schema))
}

func (s *Server) handleExportSchemaHTML(w http.ResponseWriter, r *http.Request) {
	schema := s.store.Snapshot().GeneratedSchema
	if schema == "" {
		http.Error(w, "no schema to export", http.StatusNotFound)
		return
	}
	html, err := export.SchemaHTML(schema)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) handleExportImage(w http.ResponseWriter, r *http.Request) {
	imageURL := s.store.Snapshot().GeneratedImage
	if imageURL == "" {
		http.Error(w, "no image to export", http.StatusNotFound)
		return
	}
	mediaType, data, err := export.DecodeImageDataURL(imageURL)
	if err != nil {
		// Remote URL rather than a data URL: hand off instead of proxying.
		http.Redirect(w, r, imageURL, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", `attachment; filename="diagram`+export.ImageExt(mediaType)+`"`)
	w.Write(data)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Info("request")
	})
}
