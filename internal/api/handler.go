// Package api exposes the HTTP surface: public reads (JSON and Atom) and
// cookie-gated authoring actions.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prakhar1989/blag/internal/auth"
	"github.com/prakhar1989/blag/internal/blog"
	"github.com/prakhar1989/blag/internal/cache"
	"github.com/prakhar1989/blag/internal/config"
	"github.com/prakhar1989/blag/internal/store"
)

// MetricsInterface defines the interface for metrics recording
type MetricsInterface interface {
	RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration)
}

type Handler struct {
	posts   store.PostStore
	users   store.UserStore // nil under the admin policy
	cache   *cache.Cache
	policy  auth.Policy
	config  *config.Config
	logger  *zap.SugaredLogger
	metrics MetricsInterface
}

func NewHandler(
	posts store.PostStore,
	users store.UserStore,
	postCache *cache.Cache,
	policy auth.Policy,
	config *config.Config,
	logger *zap.SugaredLogger,
	metrics MetricsInterface,
) *Handler {
	return &Handler{
		posts:   posts,
		users:   users,
		cache:   postCache,
		policy:  policy,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// Read endpoints

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	posts, age, err := h.cache.PublishedListing(r.Context(), false)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ListingResponse{
		Posts:      toPostDTOs(posts),
		AgeSeconds: int64(age.Seconds()),
	})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	post, age, err := h.cache.Post(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "no such post")
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, PostResponse{
		Post:       toPostDTO(*post),
		AgeSeconds: int64(age.Seconds()),
	})
}

func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	drafts, age, err := h.cache.DraftListing(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ListingResponse{
		Posts:      toPostDTOs(drafts),
		AgeSeconds: int64(age.Seconds()),
	})
}

// Authoring endpoints

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	var input PostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	if verr := h.validatePostInput(w, input); verr {
		return
	}

	post, err := h.posts.Create(r.Context(), input.Subject, input.Content, input.IsDraft)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	if err := h.cache.Invalidate(r.Context(), post.ID); err != nil {
		h.logger.Warnw("Cache invalidation failed after create", "id", post.ID, "error", err)
	}

	h.writeJSON(w, http.StatusCreated, PostResponse{Post: toPostDTO(*post)})
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	var input PostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	if verr := h.validatePostInput(w, input); verr {
		return
	}

	post, err := h.posts.Update(r.Context(), id, input.Subject, input.Content, input.IsDraft)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "no such post")
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	if err := h.cache.Invalidate(r.Context(), id); err != nil {
		h.logger.Warnw("Cache invalidation failed after update", "id", id, "error", err)
	}

	h.writeJSON(w, http.StatusOK, PostResponse{Post: toPostDTO(*post)})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	err := h.posts.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "no such post")
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	if err := h.cache.Invalidate(r.Context(), id); err != nil {
		h.logger.Warnw("Cache invalidation failed after delete", "id", id, "error", err)
	}

	h.writeJSON(w, http.StatusOK, DeleteResponse{Deleted: true, ID: id})
}

// Auth endpoints

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	if h.users == nil {
		h.writeError(w, http.StatusNotFound, "SIGNUP_DISABLED", "registration is not available in admin mode")
		return
	}

	var input SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	if err := blog.ValidateSignup(input.Username, input.Password, input.Verify, input.Email); err != nil {
		h.writeValidation(w, err, "", "")
		return
	}

	hash, err := auth.HashCredentials(input.Username, input.Password)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "HASH_ERROR", err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), input.Username, input.Email, hash)
	if errors.Is(err, store.ErrUsernameTaken) {
		h.writeJSON(w, http.StatusOK, ValidationResponse{
			Errors: map[string]string{"username": "that user already exists"},
		})
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	// Registration doubles as the first login.
	token, err := h.policy.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "AUTH_ERROR", err.Error())
		return
	}
	auth.SetSessionCookie(w, token)

	h.writeJSON(w, http.StatusCreated, LoginResponse{OK: true, User: toUserDTO(user)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	var input LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	if err := blog.ValidateLogin(input.Username, input.Password); err != nil {
		h.writeValidation(w, err, "", "")
		return
	}

	token, err := h.policy.Login(r.Context(), input.Username, input.Password)
	if errors.Is(err, auth.ErrBadCredentials) {
		// Same shape as the success response so form clients can re-render
		// with the message; status stays 200.
		h.writeJSON(w, http.StatusOK, LoginResponse{OK: false, Error: "invalid username or password"})
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "AUTH_ERROR", err.Error())
		return
	}

	auth.SetSessionCookie(w, token)

	var user *UserDTO
	if identity, err := h.policy.Authenticate(r.Context(), token); err == nil && identity.User != nil {
		user = toUserDTO(identity.User)
	}
	h.writeJSON(w, http.StatusOK, LoginResponse{OK: true, User: user})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	auth.ClearSessionCookie(w)
	h.writeJSON(w, http.StatusOK, LoginResponse{OK: true})
}

// Ops endpoints

func (h *Handler) FlushCache(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r)()

	if err := h.cache.FlushAll(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, "CACHE_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, FlushResponse{Flushed: true})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Ping(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Helpers

func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "no such post")
		return 0, false
	}
	return id, true
}

// validatePostInput writes the validation payload and reports whether the
// input was rejected. Rejections use HTTP 200 with the field errors and
// echoed values, matching form re-rendering semantics.
func (h *Handler) validatePostInput(w http.ResponseWriter, input PostInput) bool {
	if err := blog.ValidatePost(input.Subject, input.Content); err != nil {
		h.writeValidation(w, err, input.Subject, input.Content)
		return true
	}
	return false
}

func (h *Handler) writeValidation(w http.ResponseWriter, err error, subject, content string) {
	var verr *blog.ValidationError
	if !errors.As(err, &verr) {
		h.writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, ValidationResponse{
		Errors:  verr.Fields,
		Subject: subject,
		Content: content,
	})
}

func toUserDTO(user *blog.User) *UserDTO {
	return &UserDTO{ID: user.ID, Username: user.Username, Email: user.Email}
}

// observe returns a completion func to defer, recording the request once
// the handler finishes.
func (h *Handler) observe(r *http.Request) func() {
	if h.metrics == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		h.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, http.StatusOK, time.Since(start))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.logger.Errorw("API error", "code", code, "message", message, "status", status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Code: code, Message: message})
}
