package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"irisguide/internal/ratelimit"
	"irisguide/internal/util"
	"irisguide/pkg/auth"
	"irisguide/pkg/domain"
	"irisguide/services/backend/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// Redis backs the register/login limiters. Required when either limit is set.
	Redis                      redis.UniversalClient
	RegisterRateLimitPerMinute int
	LoginRateLimitPerMinute    int
	TrustedProxies             []string
	// RequireBearer guards the user and faces routes with the caller's session.
	RequireBearer bool
}

// Server exposes the IRIS REST API.
type Server struct {
	app             *app.App
	mux             *http.ServeMux
	registerLimiter ratelimit.Limiter
	loginLimiter    ratelimit.Limiter
	trustedProxies  *util.TrustedProxies
	requireBearer   bool
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		trustedProxies: trusted,
		requireBearer:  cfg.RequireBearer,
	}
	if cfg.RegisterRateLimitPerMinute > 0 {
		limiter, err := ratelimit.NewFixedWindowLimiter(cfg.Redis, "iris:ratelimit:register", cfg.RegisterRateLimitPerMinute, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("register limiter: %w", err)
		}
		s.registerLimiter = limiter
	}
	if cfg.LoginRateLimitPerMinute > 0 {
		limiter, err := ratelimit.NewFixedWindowLimiter(cfg.Redis, "iris:ratelimit:login", cfg.LoginRateLimitPerMinute, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("login limiter: %w", err)
		}
		s.loginLimiter = limiter
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with the middleware chain applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("backend", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)

	// users
	s.mux.HandleFunc("/api/user/", s.handleUser)

	// faces
	s.mux.HandleFunc("/api/faces/add", s.handleAddFace)
	s.mux.HandleFunc("/api/faces/", s.handleListFaces)

	// alerts
	s.mux.Handle("/api/alerts/sos", s.authenticated(s.handleSOS))
	s.mux.Handle("/api/alerts", s.authenticated(s.handleAlerts))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.Account)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, acct)
	})
}

func (s *Server) authorize(r *http.Request) (domain.Account, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.Account{}, false
	}
	return s.app.AccountFromToken(token)
}

// owner enforces that the caller owns accountID when bearer auth is required.
func (s *Server) owner(w http.ResponseWriter, r *http.Request, accountID string) bool {
	if !s.requireBearer {
		return true
	}
	acct, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if acct.ID != accountID {
		s.audit(r, "owner_check", "denied", "user_id", acct.ID, "target_id", accountID)
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// auth handlers
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registerLimiter, "too many registration attempts") {
		s.audit(r, "register", "rate_limited")
		return
	}
	var req app.Registration
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	acct, err := s.app.Register(req)
	if err != nil {
		s.audit(r, "register", "failure", "reason", err.Error())
		s.writeAppError(w, err)
		return
	}
	s.audit(r, "register", "success", "user_id", acct.ID, "user_type", string(acct.Role))
	writeJSON(w, http.StatusCreated, accountResponse{Message: "User registered", User: acct})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "login", "rate_limited")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	acct, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "login", "failure", "reason", err.Error())
		s.writeAppError(w, err)
		return
	}
	s.audit(r, "login", "success", "user_id", acct.ID)
	writeJSON(w, http.StatusOK, accountResponse{Message: "Login successful", User: acct, Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.app.Logout(token); err != nil {
		slog.Error("logout failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.audit(r, "logout", "success")
	w.WriteHeader(http.StatusNoContent)
}

// user handlers
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/user/"), "/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(action, "/") {
		http.NotFound(w, r)
		return
	}
	switch action {
	case "":
		s.handleGetUser(w, r, id)
	case "settings":
		s.handleSettings(w, r, id)
	case "password":
		s.handlePassword(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !s.owner(w, r, id) {
		return
	}
	acct, err := s.app.GetAccount(id)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	if !s.owner(w, r, id) {
		return
	}
	var req settingsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	acct, err := s.app.UpdateSettings(id, req.Settings)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{Message: "Settings updated", User: acct})
}

func (s *Server) handlePassword(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	acct, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if acct.ID != id {
		s.audit(r, "password_change", "denied", "user_id", acct.ID, "target_id", id)
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.ChangePassword(acct.ID, req.CurrentPassword, req.NewPassword); err != nil {
		s.audit(r, "password_change", "failure", "user_id", acct.ID, "reason", err.Error())
		s.writeAppError(w, err)
		return
	}
	s.audit(r, "password_change", "success", "user_id", acct.ID)
	w.WriteHeader(http.StatusNoContent)
}

// face handlers
func (s *Server) handleAddFace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req app.FaceInput
	// data URLs inflate images by a third
	if err := json.NewDecoder(io.LimitReader(r.Body, 8<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !s.owner(w, r, req.UserID) {
		return
	}
	face, err := s.app.AddFace(r.Context(), req)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, faceResponse{Message: "Person added successfully", Face: face})
}

func (s *Server) handleListFaces(w http.ResponseWriter, r *http.Request) {
	userID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/faces/"), "/")
	if userID == "" || strings.Contains(userID, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !s.owner(w, r, userID) {
		return
	}
	faces, err := s.app.ListFaces(r.Context(), userID)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	if faces == nil {
		faces = []domain.Face{}
	}
	writeJSON(w, http.StatusOK, faces)
}

// alert handlers
func (s *Server) handleSOS(w http.ResponseWriter, r *http.Request, acct domain.Account) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req sosRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	alert, err := s.app.RaiseSOS(r.Context(), acct, req.Message)
	if err != nil {
		s.audit(r, "sos", "failure", "user_id", acct.ID, "reason", err.Error())
		s.writeAppError(w, err)
		return
	}
	s.audit(r, "sos", "success", "user_id", acct.ID, "device_id", alert.DeviceID, "alert_id", alert.ID)
	writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request, acct domain.Account) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	list, err := s.app.ListAlerts(r.Context(), acct)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	if list == nil {
		list = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxies),
		"request_id", util.RequestIDFromRequest(r),
	}
	logAttrs = append(logAttrs, attrs...)
	logger := util.LoggerFromContext(r.Context())
	if outcome == "success" {
		logger.Info("security_event", logAttrs...)
		return
	}
	logger.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter ratelimit.Limiter, msg string) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(r.Context(), key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

// writeAppError maps app and domain errors to status codes.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrUserExists),
		errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrRequiredFields),
		errors.Is(err, app.ErrInvalidUserType),
		errors.Is(err, app.ErrPasswordRequired),
		errors.Is(err, app.ErrFaceNameRequired),
		errors.Is(err, app.ErrFaceImageRequired),
		errors.Is(err, app.ErrNoDevice),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrPasswordTooShort),
		domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrAlertsDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	Message string         `json:"message"`
	User    domain.Account `json:"user"`
	Token   string         `json:"token,omitempty"`
}

type settingsRequest struct {
	Settings app.SettingsPatch `json:"settings"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type faceResponse struct {
	Message string      `json:"message"`
	Face    domain.Face `json:"face"`
}

type sosRequest struct {
	Message string `json:"message"`
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		slog.Warn("empty bearer token", "path", r.URL.Path)
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends the {"message"} shape the companion reads, with "error" mirrored.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg, "error": msg})
}
