package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/notes-app/backend/internal/apperr"
	"github.com/ayush/notes-app/backend/internal/httpx"
	"github.com/ayush/notes-app/backend/internal/logging"
	"github.com/ayush/notes-app/backend/internal/models"
	"github.com/ayush/notes-app/backend/internal/requestctx"
	"github.com/ayush/notes-app/backend/internal/store"
)

const registerFailedMessage = "An error occurred. Please try again later."

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, fullName, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds account-related HTTP handlers.
type Handler struct {
	users  UserStore
	tokens *TokenService
	log    logging.Logger
}

func NewHandler(users UserStore, tokens *TokenService, log logging.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, log: log}
}

// normalizeEmail makes the unique email index case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user and returns it with an access token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = normalizeEmail(req.Email)

	switch {
	case req.FullName == "":
		httpx.Error(w, r, h.log, apperr.Validation("Please enter your full name"))
		return
	case req.Email == "":
		httpx.Error(w, r, h.log, apperr.Validation("Please enter your email"))
		return
	case req.Password == "":
		httpx.Error(w, r, h.log, apperr.Validation("Please enter your password"))
		return
	}

	ctx := r.Context()
	if _, err := h.users.GetUserByEmail(ctx, req.Email); err == nil {
		httpx.Error(w, r, h.log, apperr.Conflict("User already exists"))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		httpx.Error(w, r, h.log, apperr.Wrap(apperr.KindInternal, registerFailedMessage, err))
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			httpx.Error(w, r, h.log, apperr.Validation("Password is too long"))
			return
		}
		httpx.Error(w, r, h.log, apperr.Wrap(apperr.KindInternal, registerFailedMessage, err))
		return
	}

	user, err := h.users.CreateUser(ctx, req.FullName, req.Email, hashed)
	if err != nil {
		// A concurrent registration can win the race past the lookup above;
		// the unique index reports it here.
		if errors.Is(err, store.ErrDuplicateEmail) {
			httpx.Error(w, r, h.log, apperr.Conflict("User already exists"))
			return
		}
		httpx.Error(w, r, h.log, apperr.Wrap(apperr.KindInternal, registerFailedMessage, err))
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Wrap(apperr.KindInternal, registerFailedMessage, err))
		return
	}

	h.log.Info(ctx, "account created", "user_id", user.ID)
	httpx.Success(w, http.StatusCreated, "Registration Successful", httpx.Fields{
		"user":        user,
		"accessToken": token,
	})
}

// Login verifies credentials and issues an access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	sentEmail := req.Email
	req.Email = normalizeEmail(req.Email)

	if req.Email == "" {
		httpx.Error(w, r, h.log, apperr.Validation("Email is required"))
		return
	}
	if req.Password == "" {
		httpx.Error(w, r, h.log, apperr.Validation("Password is required"))
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, r, h.log, apperr.Validation("User not found"))
			return
		}
		httpx.Error(w, r, h.log, apperr.Internal(err))
		return
	}

	ok, err := CheckPassword(user.Password, req.Password)
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Internal(err))
		return
	}
	if !ok {
		httpx.Error(w, r, h.log, apperr.Validation("Invalid email or password"))
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Internal(err))
		return
	}

	httpx.Success(w, http.StatusOK, "Login Successful", httpx.Fields{
		"email":       sentEmail,
		"accessToken": token,
	})
}

// Me returns the profile of the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := requestctx.UserFromContext(r.Context())
	if user == nil {
		httpx.Error(w, r, h.log, apperr.Validation("User not found"))
		return
	}
	httpx.Success(w, http.StatusOK, "", httpx.Fields{"user": user.Profile()})
}
