// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	commonerrors "trip-os/internal/common/errors"
	"trip-os/internal/models"
	"trip-os/internal/store"
	"trip-os/internal/tts"
	"trip-os/pkg/schemas"
)

type chatSendRequest struct {
	UserID  string `json:"userId"`
	TripID  string `json:"tripId,omitempty"`
	Message string `json:"message"`
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var req chatSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errors.WriteError(w, r, commonerrors.NewInvalidRequestError("malformed JSON body"))
		return
	}
	if req.UserID == "" || req.Message == "" {
		s.errors.WriteError(w, r, commonerrors.NewInvalidRequestError("userId and message are required"))
		return
	}

	result, err := s.chat.Send(r.Context(), req.UserID, req.TripID, req.Message)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var trip models.Trip
	if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
		s.errors.WriteError(w, r, commonerrors.NewInvalidRequestError("malformed JSON body"))
		return
	}
	if trip.UserID == "" {
		s.errors.WriteError(w, r, commonerrors.NewInvalidRequestError("userId is required"))
		return
	}
	if err := schemas.ValidateTripDocument(&trip); err != nil {
		s.errors.WriteError(w, r, commonerrors.NewTripValidationFailedError(err.Error()))
		return
	}

	created, err := s.trips.Create(r.Context(), &trip)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	s.reindex(r.Context(), created)
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.errors.WriteError(w, r, commonerrors.NewInvalidRequestError("userId query parameter is required"))
		return
	}

	trips, err := s.trips.ListByUser(r.Context(), userID)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"trips": trips})
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errors.WriteError(w, r, s.mapStoreError(err, r.PathValue("id")))
		return
	}
	s.writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handlePatchTrip(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.errors.WriteError(w, r, commonerrors.NewInvalidRequestError("malformed JSON body"))
		return
	}

	trip, err := s.trips.Patch(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.errors.WriteError(w, r, s.mapStoreError(err, r.PathValue("id")))
		return
	}
	s.reindex(r.Context(), trip)
	s.writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.errors.WriteError(w, r, s.mapStoreError(err, id))
		return
	}
	if err := s.index.DeleteTrip(r.Context(), id); err != nil {
		s.logger.Warn("search index delete failed", map[string]interface{}{
			"tripId": id,
			"error":  err.Error(),
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

type appendLogRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleAppendLog(w http.ResponseWriter, r *http.Request) {
	var req appendLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		s.errors.WriteError(w, r, commonerrors.NewInvalidRequestError("message is required"))
		return
	}

	trip, err := s.trips.AppendLog(r.Context(), r.PathValue("id"), req.Message)
	if err != nil {
		s.errors.WriteError(w, r, s.mapStoreError(err, r.PathValue("id")))
		return
	}
	s.writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleSearchTrips(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID := query.Get("userId")
	q := query.Get("q")
	if userID == "" || q == "" {
		s.errors.WriteError(w, r, commonerrors.NewInvalidRequestError("userId and q query parameters are required"))
		return
	}
	size, _ := strconv.Atoi(query.Get("size"))

	hits, err := s.index.Search(r.Context(), userID, q, size)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"results": hits})
}

type briefingRequest struct {
	TripID  string `json:"tripId"`
	Text    string `json:"text,omitempty"`
	VoiceID string `json:"voiceId,omitempty"`
}

// handleBriefing speaks a trip. With a tripId the briefing text is
// composed from the stored trip; a raw text body bypasses composition.
func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	var req briefingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errors.WriteError(w, r, commonerrors.NewInvalidRequestError("malformed JSON body"))
		return
	}

	text := req.Text
	if req.TripID != "" {
		trip, err := s.trips.Get(r.Context(), req.TripID)
		if err != nil {
			s.errors.WriteError(w, r, s.mapStoreError(err, req.TripID))
			return
		}
		text = tts.BuildBriefing(trip)
	}
	if text == "" {
		s.errors.WriteError(w, r, commonerrors.NewInvalidRequestError("tripId or text is required"))
		return
	}

	audio, err := s.tts.Synthesize(r.Context(), text, req.VoiceID)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	services := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check.Ping(ctx); err != nil {
			services[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		services[name] = "up"
	}

	body := map[string]interface{}{
		"status":   "ok",
		"services": services,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	s.writeJSON(w, status, body)
}

func (s *Server) mapStoreError(err error, tripID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return commonerrors.NewTripNotFoundError(tripID)
	}
	return err
}

func (s *Server) reindex(ctx context.Context, trip *models.Trip) {
	if err := s.index.IndexTrip(ctx, trip); err != nil {
		s.logger.Warn("search index update failed", map[string]interface{}{
			"tripId": trip.ID,
			"error":  err.Error(),
		})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
