package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/DELTAJoSch/Horus/internal/domain"
	domerrors "github.com/DELTAJoSch/Horus/internal/domain/errors"
	"github.com/DELTAJoSch/Horus/internal/infrastructure/http/middleware"
)

// UserService is the domain-service surface the HTTP layer consumes.
type UserService interface {
	Login(ctx context.Context, req domain.LoginRequest) (bool, error)
	Create(ctx context.Context, data domain.UserData, issuer string) (string, error)
	Update(ctx context.Context, data domain.UserData, targetName, issuer string) error
	Delete(ctx context.Context, targetName, issuer string) error
	Get(ctx context.Context, name string) (domain.UserView, error)
	List(ctx context.Context, page, size int, criteria domain.Criteria) ([]domain.UserView, error)
	Count(ctx context.Context, criteria domain.Criteria) (int64, error)
}

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// UsersHandler serves the /api/v1/users surface.
type UsersHandler struct {
	svc      UserService
	sessions *middleware.SessionManager
	validate *validator.Validate
	log      zerolog.Logger
}

// NewUsersHandler creates the handler for the user endpoints.
func NewUsersHandler(svc UserService, sessions *middleware.SessionManager, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{
		svc:      svc,
		sessions: sessions,
		validate: validator.New(),
		log:      log,
	}
}

type loginPayload struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type createdResponse struct {
	Name string `json:"name"`
}

func (p userPayload) toData() (domain.UserData, error) {
	role, err := domain.ParseRole(p.Role)
	if err != nil {
		return domain.UserData{}, err
	}
	return domain.UserData{
		Name:     p.Name,
		Email:    p.Email,
		Password: p.Password,
		Role:     role,
	}, nil
}

// List serves GET /api/v1/users/users: a filtered page of user views plus
// the total match count in the X-Search-Matches header.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := pageQuery(r)
	criteria, err := criteriaQuery(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := h.svc.Count(r.Context(), criteria)
	if err != nil {
		writeServiceErr(w, h.log, err)
		return
	}
	views, err := h.svc.List(r.Context(), page, size, criteria)
	if err != nil {
		writeServiceErr(w, h.log, err)
		return
	}
	w.Header().Set("X-Search-Matches", strconv.FormatInt(count, 10))
	writeJSON(w, http.StatusOK, views)
}

// GetUser serves GET /api/v1/users/users/{name}.
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Me serves GET /api/v1/users: the currently authenticated caller's own
// record. Unlike the /users subtree this endpoint resolves the session
// itself so it can distinguish 401 from a stale session's 404.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := h.sessions.Principal(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "user not logged in")
		return
	}
	view, err := h.svc.Get(r.Context(), p.Name)
	if err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "the user does not exist any more")
			return
		}
		writeServiceErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Login serves POST /api/v1/users/session. On success the session cookie
// is bound to the account's name, email and role.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeErr(w, http.StatusBadRequest, "name and password are required")
		return
	}
	ok, err := h.svc.Login(r.Context(), domain.LoginRequest{Name: payload.Name, Password: payload.Password})
	if err != nil {
		writeServiceErr(w, h.log, err)
		return
	}
	if !ok {
		middleware.RecordLoginAttempt(false)
		writeErr(w, http.StatusUnauthorized, "wrong login data")
		return
	}
	view, err := h.svc.Get(r.Context(), payload.Name)
	if err != nil {
		writeServiceErr(w, h.log, err)
		return
	}
	if view.Email == "" || !view.Role.Valid() {
		writeServiceErr(w, h.log,
			domerrors.Internal("data is inconsistent, missing role or email for "+payload.Name, nil))
		return
	}
	if err := h.sessions.Establish(w, r, middleware.Principal{
		Name:  view.Name,
		Email: view.Email,
		Role:  view.Role,
	}); err != nil {
		writeServiceErr(w, h.log, domerrors.Internal("establishing session", err))
		return
	}
	middleware.RecordLoginAttempt(true)
	w.WriteHeader(http.StatusOK)
}

// Logout serves GET /api/v1/users/session: clears the session.
func (h *UsersHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		writeServiceErr(w, h.log, domerrors.Internal("clearing session", err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Create serves POST /api/v1/users/users (Admin only).
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "identity not known")
		return
	}
	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	data, err := payload.toData()
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	name, err := h.svc.Create(r.Context(), data, principal.Name)
	if err != nil {
		writeServiceErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, createdResponse{Name: name})
}

// Update serves PATCH /api/v1/users/users/{name} (Admin only). The update
// replaces the account wholesale; the password is mandatory.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "identity not known")
		return
	}
	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	data, err := payload.toData()
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Update(r.Context(), data, chi.URLParam(r, "name"), principal.Name); err != nil {
		writeServiceErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, createdResponse{Name: payload.Name})
}

// Delete serves DELETE /api/v1/users/users/{name} (Admin only).
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "identity not known")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "name"), principal.Name); err != nil {
		writeServiceErr(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func pageQuery(r *http.Request) (page, size int) {
	size = defaultPageSize
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size = n
			if size > maxPageSize {
				size = maxPageSize
			}
		}
	}
	return page, size
}

func criteriaQuery(r *http.Request) (domain.Criteria, error) {
	role, err := domain.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		return domain.Criteria{}, err
	}
	return domain.Criteria{
		Name:  r.URL.Query().Get("name"),
		Email: r.URL.Query().Get("email"),
		Role:  role,
	}, nil
}
