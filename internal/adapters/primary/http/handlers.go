package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SlidesResponse represents the slides API response
type SlidesResponse struct {
	Title       string            `json:"title"`
	Author      string            `json:"author,omitempty"`
	Template    string            `json:"template"`
	Width       int64             `json:"width"`
	Height      int64             `json:"height"`
	Slides      []ports.SlideView `json:"slides"`
	Diagnostics []SlideDiagnostic `json:"diagnostics,omitempty"`
	BuildError  string            `json:"build_error,omitempty"`
}

// SlideDiagnostic is a build diagnostic attributed to a slide
type SlideDiagnostic struct {
	SlideIndex int `json:"slide_index"`
	entities.Diagnostic
}

// SlotResponse is one discovered slot
type SlotResponse struct {
	Name       string `json:"name"`
	Element    string `json:"element"`
	SlideIndex int    `json:"slide_index"`
	Resolved   bool   `json:"resolved"`
}

// HealthResponse reports server state
type HealthResponse struct {
	Status  string `json:"status"`
	Slides  int    `json:"slides"`
	Clients int    `json:"clients"`
}

// handlePreview serves the rendered deck page
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	deck, _, _ := s.snapshot()
	if deck == nil {
		deck = entities.NewDeck(nil)
		deck.Title = "No deck loaded"
	}

	html, err := s.renderer.RenderDeck(r.Context(), deck)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		s.logger.Error("Failed to write preview response", slog.String("error", err.Error()))
	}
}

// handleSlides returns every slide as JSON
func (s *Server) handleSlides(w http.ResponseWriter, r *http.Request) {
	deck, reports, buildErr := s.snapshot()
	if deck == nil {
		deck = entities.NewDeck(nil)
		deck.Title = "No deck loaded"
	}

	views, err := s.renderer.RenderSlides(deck)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	tmpl := deck.Template
	if tmpl == nil {
		tmpl = entities.DefaultTemplate()
	}

	response := SlidesResponse{
		Title:    deck.Title,
		Author:   deck.Author,
		Template: tmpl.Name,
		Width:    tmpl.SlideWidth,
		Height:   tmpl.SlideHeight,
		Slides:   views,
	}
	for _, report := range reports {
		for _, d := range report.Diagnostics {
			response.Diagnostics = append(response.Diagnostics, SlideDiagnostic{
				SlideIndex: report.SlideIndex,
				Diagnostic: d,
			})
		}
	}
	if buildErr != nil {
		response.BuildError = buildErr.Error()
	}

	s.writeJSON(w, response)
}

// handleSlide returns one slide by index
func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	deck := s.Deck()
	if deck == nil || index >= deck.SlideCount() {
		s.handleError(w, errors.New("slide index out of range"), http.StatusNotFound)
		return
	}

	views, err := s.renderer.RenderSlides(deck)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, views[index])
}

// handleSlots lists the slots declared in slide notes
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	deck := s.Deck()
	response := []SlotResponse{}
	if deck == nil {
		s.writeJSON(w, response)
		return
	}

	slots, err := deck.Slots()
	if err != nil {
		// Slot records are user content, so the parse error is safe to show
		s.writeStatusJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   http.StatusText(http.StatusUnprocessableEntity),
			Message: err.Error(),
			Time:    time.Now(),
		})
		return
	}

	for _, slot := range slots {
		_, resolveErr := slot.Slide.Element(slot.Element)
		response = append(response, SlotResponse{
			Name:       slot.Name,
			Element:    slot.Element,
			SlideIndex: slot.SlideIndex,
			Resolved:   resolveErr == nil,
		})
	}
	s.writeJSON(w, response)
}

// handleMedia serves the bytes of a picture shape
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slideIndex, err := strconv.Atoi(vars["slide"])
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}
	shapeIndex, err := strconv.Atoi(vars["shape"])
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	deck := s.Deck()
	if deck == nil || slideIndex >= deck.SlideCount() {
		http.NotFound(w, r)
		return
	}
	slide := deck.Slides[slideIndex]
	if shapeIndex >= len(slide.Shapes) || slide.Shapes[shapeIndex].Picture == nil {
		http.NotFound(w, r)
		return
	}

	pic := slide.Shapes[shapeIndex].Picture
	w.Header().Set("Content-Type", pic.MIMEType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pic.Data); err != nil {
		s.logger.Error("Failed to write media response", slog.String("error", err.Error()))
	}
}

// handleHealth reports whether a deck is loaded
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	deck, _, buildErr := s.snapshot()

	response := HealthResponse{Status: "ok", Clients: s.currentHub().Count()}
	if deck != nil {
		response.Slides = deck.SlideCount()
	} else {
		response.Status = "empty"
	}
	if buildErr != nil {
		response.Status = "build_error"
	}
	s.writeJSON(w, response)
}

// handleMetrics reports rebuild and request counters
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.metrics.Status())
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	// Sanitize error message to prevent information disclosure
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusTooManyRequests:
		message = "Too many requests"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	s.logger.Error("HTTP error", slog.Int("status", status), slog.String("error", err.Error()))

	s.writeStatusJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	s.writeStatusJSON(w, http.StatusOK, data)
}

func (s *Server) writeStatusJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Error("Failed to write JSON response", slog.String("error", err.Error()))
	}
}
