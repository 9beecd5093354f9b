// Package server exposes the social service over HTTP and websockets.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"teeup/internal/usertoken"
	"teeup/internal/util"
	"teeup/pkg/domain"
	"teeup/pkg/realtime"
	"teeup/pkg/store"
	"teeup/services/social/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App           *app.App
	Broker        realtime.Broker
	TokenVerifier *usertoken.Verifier
}

// Server exposes HTTP and websocket endpoints for the social service.
type Server struct {
	app           *app.App
	broker        realtime.Broker
	tokenVerifier *usertoken.Verifier
	mux           *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:           cfg.App,
		broker:        cfg.Broker,
		tokenVerifier: cfg.TokenVerifier,
		mux:           http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler with the ambient middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog("social", s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /courses", s.handleListCourses)
	s.mux.HandleFunc("GET /rounds", s.handleListRounds)
	s.mux.HandleFunc("GET /rounds/{id}", s.handleGetRound)
	s.mux.HandleFunc("GET /profiles/{id}", s.handleGetProfile)
	s.mux.HandleFunc("GET /profiles/{id}/reputation", s.handleReputation)
	s.mux.HandleFunc("GET /profiles/{id}/reviews", s.handleProfileReviews)

	s.mux.Handle("POST /rounds", s.withProfile(s.handleCreateRound))
	s.mux.Handle("POST /rounds/{id}/join", s.withProfile(s.handleJoinRound))
	s.mux.Handle("POST /rounds/{id}/leave", s.withProfile(s.handleLeaveRound))
	s.mux.Handle("GET /rounds/{id}/conversation", s.withProfile(s.handleRoundConversation))
	s.mux.Handle("GET /rounds/{id}/review-targets", s.withProfile(s.handleReviewTargets))
	s.mux.Handle("POST /rounds/{id}/reviews", s.withProfile(s.handleUpsertReview))

	s.mux.Handle("GET /me/rounds", s.withProfile(s.handleMyRounds))
	s.mux.Handle("GET /me/profile", s.withProfile(s.handleMyProfile))
	s.mux.Handle("PATCH /me/profile", s.withProfile(s.handleUpdateProfile))
	s.mux.Handle("POST /me/avatar", s.withProfile(s.handleUploadAvatar))

	s.mux.Handle("GET /conversations", s.withProfile(s.handleListConversations))
	s.mux.Handle("POST /conversations/dm", s.withProfile(s.handleGetOrCreateDM))
	s.mux.Handle("GET /conversations/{id}/messages", s.withProfile(s.handleListMessages))
	s.mux.Handle("POST /conversations/{id}/messages", s.withProfile(s.handleSendMessage))

	s.mux.Handle("GET /ws/conversations/{id}", s.withProfile(s.handleConversationSocket))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type profileHandler func(http.ResponseWriter, *http.Request, domain.Profile)

// withProfile authenticates the bearer token and resolves the caller's
// profile for the request. Tokens may also arrive in the token query
// parameter, which browser websocket clients need.
func (s *Server) withProfile(next profileHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		userID, err := s.tokenVerifier.VerifySubject(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		profile, err := s.app.ProfileForUser(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "no profile for user")
			return
		}
		next(w, r, profile)
	})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.app.ListCourses(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := s.app.ListRounds(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.app.GetRound(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

type createRoundRequest struct {
	CourseID      string `json:"courseId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Format        string `json:"format"`
	PlayersNeeded int    `json:"playersNeeded"`
	MinHandicap   *int   `json:"minHandicap"`
	MaxHandicap   *int   `json:"maxHandicap"`
	Description   string `json:"description"`
}

func (s *Server) handleCreateRound(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	var req createRoundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	round, err := s.app.CreateRound(r.Context(), profile.ID, app.CreateRoundInput{
		CourseID:      req.CourseID,
		Date:          req.Date,
		Time:          req.Time,
		Format:        domain.GameFormat(req.Format),
		PlayersNeeded: req.PlayersNeeded,
		MinHandicap:   req.MinHandicap,
		MaxHandicap:   req.MaxHandicap,
		Description:   req.Description,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, round)
}

func (s *Server) handleJoinRound(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	if err := s.app.JoinRound(r.Context(), profile.ID, r.PathValue("id")); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

func (s *Server) handleLeaveRound(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	outcome, err := s.app.LeaveRound(r.Context(), profile.ID, r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
}

func (s *Server) handleMyRounds(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	mine, err := s.app.MyRounds(r.Context(), profile.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mine)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.app.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleMyProfile(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	writeJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Handicap *int    `json:"handicap"`
	HomeClub *string `json:"homeClub"`
	Bio      *string `json:"bio"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	updated, err := s.app.UpdateProfile(r.Context(), profile.ID, store.ProfileUpdate{
		Name:     req.Name,
		Handicap: req.Handicap,
		HomeClub: req.HomeClub,
		Bio:      req.Bio,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	contentType := r.Header.Get("Content-Type")
	updated, err := s.app.UploadAvatar(r.Context(), profile.ID, r.Body, r.ContentLength, contentType)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleReputation(w http.ResponseWriter, r *http.Request) {
	kpis, err := s.app.Reputation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kpis)
}

func (s *Server) handleProfileReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.app.ProfileReviews(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) handleReviewTargets(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	targets, err := s.app.RoundReviewTargets(r.Context(), profile.ID, r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

type upsertReviewRequest struct {
	ReviewedUserID string `json:"reviewedUserId"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
}

func (s *Server) handleUpsertReview(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	var req upsertReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	review, err := s.app.UpsertReview(r.Context(), profile.ID, r.PathValue("id"), req.ReviewedUserID, req.Rating, req.Comment)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

type dmRequest struct {
	ProfileID string `json:"profileId"`
}

func (s *Server) handleGetOrCreateDM(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	var req dmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	conv, err := s.app.GetOrCreateDM(r.Context(), profile.ID, req.ProfileID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	list, err := s.app.ListConversations(r.Context(), profile.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleRoundConversation(w http.ResponseWriter, r *http.Request, _ domain.Profile) {
	convID, err := s.app.RoundConversation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"conversationId": convID})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request, _ domain.Profile) {
	messages, err := s.app.ListMessages(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	var req sendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	msg, err := s.app.SendMessage(r.Context(), profile.UserID, r.PathValue("id"), content)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps the app's sentinel errors onto HTTP statuses; anything
// unclassified is a 500 with a generic body.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrRoundNotFound),
		errors.Is(err, app.ErrConversationNotFound),
		errors.Is(err, app.ErrCourseNotFound),
		errors.Is(err, app.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrAlreadyJoined),
		errors.Is(err, app.ErrRoundFull),
		errors.Is(err, app.ErrNotParticipant):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrValidation),
		errors.Is(err, app.ErrInvalidRating),
		errors.Is(err, app.ErrSelfReview),
		errors.Is(err, app.ErrAvatarsUnavailable):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token != "" {
			return token, true
		}
	}
	// Browser websocket clients cannot set headers; allow a query token there.
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token, true
	}
	return "", false
}
