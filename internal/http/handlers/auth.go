package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/amaravathi/marketplace/internal/auth"
	"github.com/amaravathi/marketplace/internal/config"
	"github.com/amaravathi/marketplace/internal/domain/user"
	"github.com/amaravathi/marketplace/internal/http/middlewares"
	"github.com/amaravathi/marketplace/internal/repo/postgres"
	"github.com/amaravathi/marketplace/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, u user.User) (user.User, error)
}

type TokenIssuer interface {
	Generate(kind string, id int64, email, firstName string) (string, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        TokenIssuer
	images     ImageUploader
	log        *slog.Logger
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwt TokenIssuer, images ImageUploader, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwt,
		images:     images,
		log:        log,
	}
}

// SignUp registers a user account. No token is issued; the caller logs in
// separately.
func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.SignupRequest

	if !BindForm(ctx, &req) {
		return
	}

	req.Normalize()

	if !req.Complete() {
		RespondBadRequest(ctx, "Name, Email, Phone, and Password are required", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// early rejection; the unique index is the real guard
	_, err := h.users.GetByEmail(cctx, req.Email)

	if err == nil {
		RespondBadRequest(ctx, "User already exists with this email", nil)
		return
	}

	if !errors.Is(err, postgres.ErrUserNotFound) {
		h.logInternal(ctx, "signup lookup failed", err)
		RespondInternal(ctx)
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.logInternal(ctx, "signup hash failed", err)
		RespondInternal(ctx)
		return
	}

	image, ok := formImage(ctx, h.images, "profileImage", "users")

	if !ok {
		return
	}

	_, err = h.userWriter.Create(cctx, user.User{
		FirstName:    req.FirstName,
		Email:        req.Email,
		PasswordHash: hash,
		MobileNumber: req.MobileNumber,
		ProfileImage: image,
	})

	if err != nil {
		dropImage(cctx, h.images, image)

		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondBadRequest(ctx, "User already exists with this email", nil)
			return
		}

		h.logInternal(ctx, "signup create failed", err)
		RespondInternal(ctx)
		return
	}

	RespondMessage(ctx, http.StatusCreated, "User registered successfully")
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, user.NormalizeEmail(req.Email))

	// same message for an unknown email and a wrong password, so callers
	// cannot probe which accounts exist
	if err != nil {
		RespondBadRequest(ctx, "Invalid credentials", nil)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondBadRequest(ctx, "Invalid credentials", nil)
		return
	}

	token, err := h.jwt.Generate(auth.KindUser, foundUser.ID, foundUser.Email, foundUser.FirstName)

	if err != nil {
		h.logInternal(ctx, "login token failed", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    foundUser.Public(),
	})
}

// Me returns the authenticated user. A vendor token gets a 404 here; this
// route only serves user principals.
func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondNotFound(ctx, "User not found")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AuthHandler) logInternal(ctx *gin.Context, msg string, err error) {
	reqID, _ := ctx.Get(middlewares.CtxRequestID)
	h.log.Error(msg, "err", err, "request_id", reqID)
}
