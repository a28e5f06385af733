package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amaravathi/marketplace/internal/auth"
	"github.com/amaravathi/marketplace/internal/config"
	"github.com/amaravathi/marketplace/internal/domain/vendor"
	"github.com/amaravathi/marketplace/internal/http/middlewares"
	"github.com/amaravathi/marketplace/internal/repo/postgres"
	"github.com/amaravathi/marketplace/internal/security"
	"github.com/gin-gonic/gin"
)

type VendorStore interface {
	Create(ctx context.Context, v vendor.Vendor) (vendor.Vendor, error)
	GetByEmail(ctx context.Context, email string) (vendor.Vendor, error)
	GetByID(ctx context.Context, id int64) (vendor.Vendor, error)
	List(ctx context.Context) ([]vendor.Vendor, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	PhoneTaken(ctx context.Context, phone string, excludeID int64) (bool, error)
	Update(ctx context.Context, v vendor.Vendor) (vendor.Vendor, error)
	Delete(ctx context.Context, id int64) error
}

// ListingCache fronts the public listing endpoints; implementations must
// treat failures as misses.
type ListingCache interface {
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, val any)
	Invalidate(ctx context.Context, keys ...string)
}

const vendorsListKey = "vendors:list"

type VendorsHandler struct {
	store  VendorStore
	jwt    TokenIssuer
	images ImageUploader
	cache  ListingCache
	log    *slog.Logger
}

func NewVendorsHandler(store VendorStore, jwt TokenIssuer, images ImageUploader, cache ListingCache, log *slog.Logger) *VendorsHandler {
	return &VendorsHandler{
		store:  store,
		jwt:    jwt,
		images: images,
		cache:  cache,
		log:    log,
	}
}

// Register creates a vendor. Email and phone must both be unused; either
// collision rejects. User emails are a separate namespace and never checked.
func (h *VendorsHandler) Register(ctx *gin.Context) {
	var req vendor.RegisterRequest

	if !BindForm(ctx, &req) {
		return
	}

	req.Normalize()

	if !req.Complete() {
		RespondFail(ctx, http.StatusBadRequest, "Name, Email, Phone, Category, and Password are required")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if taken, err := h.store.EmailTaken(cctx, req.Email, 0); err != nil {
		h.logInternal(ctx, "vendor register email check failed", err)
		RespondFailInternal(ctx)
		return
	} else if taken {
		RespondFail(ctx, http.StatusBadRequest, "Email already exists")
		return
	}

	if taken, err := h.store.PhoneTaken(cctx, req.MobileNumber, 0); err != nil {
		h.logInternal(ctx, "vendor register phone check failed", err)
		RespondFailInternal(ctx)
		return
	} else if taken {
		RespondFail(ctx, http.StatusBadRequest, "Phone number already exists")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.logInternal(ctx, "vendor register hash failed", err)
		RespondFailInternal(ctx)
		return
	}

	image, ok := formImage(ctx, h.images, "profileImage", "vendors")

	if !ok {
		return
	}

	created, err := h.store.Create(cctx, vendor.Vendor{
		Name:         req.FirstName,
		Email:        req.Email,
		Phone:        req.MobileNumber,
		BusinessName: req.BusinessName,
		Category:     req.Category,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Status:       vendor.StatusActive,
		ProfileImage: image,
		PasswordHash: hash,
	})

	if err != nil {
		dropImage(cctx, h.images, image)

		switch {
		case errors.Is(err, postgres.ErrEmailTaken):
			RespondFail(ctx, http.StatusBadRequest, "Email already exists")
		case errors.Is(err, postgres.ErrPhoneTaken):
			RespondFail(ctx, http.StatusBadRequest, "Phone number already exists")
		default:
			h.logInternal(ctx, "vendor register create failed", err)
			RespondFailInternal(ctx)
		}
		return
	}

	h.cache.Invalidate(cctx, vendorsListKey)

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Vendor registered successfully",
		"data":    created.Public(),
	})
}

func (h *VendorsHandler) Login(ctx *gin.Context) {
	var req vendor.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	found, err := h.store.GetByEmail(cctx, vendor.NormalizeEmail(req.Email))

	if err != nil {
		RespondFail(ctx, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	err = security.CheckPassword(found.PasswordHash, req.Password)

	if err != nil {
		RespondFail(ctx, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.jwt.Generate(auth.KindVendor, found.ID, found.Email, "")

	if err != nil {
		h.logInternal(ctx, "vendor login token failed", err)
		RespondFailInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"vendor":  found.Public(),
	})
}

// Me returns the authenticated vendor. A user token gets a 401 here.
func (h *VendorsHandler) Me(ctx *gin.Context) {
	v, ok := middlewares.VendorFromContext(ctx)

	if !ok {
		RespondFail(ctx, http.StatusUnauthorized, "Not authenticated")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    v,
	})
}

func (h *VendorsHandler) List(ctx *gin.Context) {
	cctx := ctx.Request.Context()

	var cached []vendor.Vendor

	if h.cache.GetJSON(cctx, vendorsListKey, &cached) {
		ctx.JSON(http.StatusOK, gin.H{"success": true, "data": cached})
		return
	}

	vendors, err := h.store.List(cctx)

	if err != nil {
		h.logInternal(ctx, "vendor list failed", err)
		RespondFailInternal(ctx)
		return
	}

	h.cache.SetJSON(cctx, vendorsListKey, vendors)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vendors,
	})
}

func (h *VendorsHandler) Update(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondFail(ctx, http.StatusNotFound, "Vendor not found")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	current, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrVendorNotFound) {
			RespondFail(ctx, http.StatusNotFound, "Vendor not found")
			return
		}

		h.logInternal(ctx, "vendor update load failed", err)
		RespondFailInternal(ctx)
		return
	}

	var req vendor.UpdateRequest

	if !BindForm(ctx, &req) {
		return
	}

	req.Normalize()

	// uniqueness is re-checked against all other vendors when contact
	// fields change
	if req.Email != nil {
		taken, err := h.store.EmailTaken(cctx, *req.Email, id)

		if err != nil {
			h.logInternal(ctx, "vendor update email check failed", err)
			RespondFailInternal(ctx)
			return
		}

		if taken {
			RespondFail(ctx, http.StatusBadRequest, "Email already exists")
			return
		}

		current.Email = *req.Email
	}

	if req.MobileNumber != nil {
		taken, err := h.store.PhoneTaken(cctx, *req.MobileNumber, id)

		if err != nil {
			h.logInternal(ctx, "vendor update phone check failed", err)
			RespondFailInternal(ctx)
			return
		}

		if taken {
			RespondFail(ctx, http.StatusBadRequest, "Phone number already exists")
			return
		}

		current.Phone = *req.MobileNumber
	}

	// a supplied empty string is an intentional overwrite; absent fields
	// stay untouched
	if req.FirstName != nil {
		current.Name = *req.FirstName
	}
	if req.BusinessName != nil {
		current.BusinessName = *req.BusinessName
	}
	if req.Category != nil {
		current.Category = *req.Category
	}
	if req.Address != nil {
		current.Address = *req.Address
	}
	if req.Latitude != nil {
		current.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		current.Longitude = *req.Longitude
	}
	if req.Status != nil {
		current.Status = *req.Status
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := security.HashPassword(*req.Password)

		if err != nil {
			h.logInternal(ctx, "vendor update hash failed", err)
			RespondFailInternal(ctx)
			return
		}

		current.PasswordHash = hash
	}

	oldImage := current.ProfileImage

	image, ok := formImage(ctx, h.images, "profileImage", "vendors")

	if !ok {
		return
	}

	if image != "" {
		current.ProfileImage = image
	}

	updated, err := h.store.Update(cctx, current)

	if err != nil {
		if image != "" {
			dropImage(cctx, h.images, image)
		}

		switch {
		case errors.Is(err, postgres.ErrVendorNotFound):
			RespondFail(ctx, http.StatusNotFound, "Vendor not found")
		case errors.Is(err, postgres.ErrEmailTaken):
			RespondFail(ctx, http.StatusBadRequest, "Email already exists")
		case errors.Is(err, postgres.ErrPhoneTaken):
			RespondFail(ctx, http.StatusBadRequest, "Phone number already exists")
		default:
			h.logInternal(ctx, "vendor update failed", err)
			RespondFailInternal(ctx)
		}
		return
	}

	if image != "" && oldImage != "" && oldImage != image {
		dropImage(cctx, h.images, oldImage)
	}

	h.cache.Invalidate(cctx, vendorsListKey)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vendor updated successfully",
		"data":    updated,
	})
}

func (h *VendorsHandler) Delete(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondFail(ctx, http.StatusNotFound, "Vendor not found")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err = h.store.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrVendorNotFound) {
			RespondFail(ctx, http.StatusNotFound, "Vendor not found")
			return
		}

		h.logInternal(ctx, "vendor delete failed", err)
		RespondFailInternal(ctx)
		return
	}

	h.cache.Invalidate(cctx, vendorsListKey)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vendor deleted successfully",
	})
}

func (h *VendorsHandler) logInternal(ctx *gin.Context, msg string, err error) {
	reqID, _ := ctx.Get(middlewares.CtxRequestID)
	h.log.Error(msg, "err", err, "request_id", reqID)
}
