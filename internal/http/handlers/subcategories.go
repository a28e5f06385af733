package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amaravathi/marketplace/internal/config"
	"github.com/amaravathi/marketplace/internal/domain/taxonomy"
	"github.com/amaravathi/marketplace/internal/http/middlewares"
	"github.com/amaravathi/marketplace/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type SubCategoryStore interface {
	Create(ctx context.Context, s taxonomy.SubCategory) (taxonomy.SubCategory, error)
	List(ctx context.Context) ([]taxonomy.SubCategory, error)
	GetByID(ctx context.Context, id int64) (taxonomy.SubCategory, error)
	Update(ctx context.Context, s taxonomy.SubCategory) (taxonomy.SubCategory, error)
	Delete(ctx context.Context, id int64) error
}

const subCategoriesListKey = "subcategories:list"

type SubCategoriesHandler struct {
	store  SubCategoryStore
	images ImageUploader
	cache  ListingCache
	log    *slog.Logger
}

func NewSubCategoriesHandler(store SubCategoryStore, images ImageUploader, cache ListingCache, log *slog.Logger) *SubCategoriesHandler {
	return &SubCategoriesHandler{
		store:  store,
		images: images,
		cache:  cache,
		log:    log,
	}
}

func (h *SubCategoriesHandler) Create(ctx *gin.Context) {
	var req taxonomy.CreateSubCategoryRequest

	if !BindForm(ctx, &req) {
		return
	}

	if req.Name == "" || req.CategoryID == 0 {
		RespondBadRequest(ctx, "Name and categoryId are required", nil)
		return
	}

	status := req.Status
	if status == "" {
		status = taxonomy.SubStatusActive
	}

	if !taxonomy.ValidSubStatus(status) {
		RespondBadRequest(ctx, "Status must be Active or Inactive", nil)
		return
	}

	image, ok := formImage(ctx, h.images, "profile", "categories")

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.store.Create(cctx, taxonomy.SubCategory{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Status:      status,
		Profile:     image,
	})

	if err != nil {
		dropImage(cctx, h.images, image)

		// FK rejection from the storage layer
		if errors.Is(err, postgres.ErrCategoryNotFound) {
			RespondBadRequest(ctx, "Category does not exist", nil)
			return
		}

		h.logInternal(ctx, "subcategory create failed", err)
		RespondInternal(ctx)
		return
	}

	h.cache.Invalidate(cctx, subCategoriesListKey)

	ctx.JSON(http.StatusCreated, gin.H{
		"message":     "SubCategory created successfully",
		"subCategory": created,
	})
}

// List is public; each row carries the parent category name.
func (h *SubCategoriesHandler) List(ctx *gin.Context) {
	cctx := ctx.Request.Context()

	var cached []taxonomy.SubCategory

	if h.cache.GetJSON(cctx, subCategoriesListKey, &cached) {
		ctx.JSON(http.StatusOK, cached)
		return
	}

	subCategories, err := h.store.List(cctx)

	if err != nil {
		h.logInternal(ctx, "subcategory list failed", err)
		RespondInternal(ctx)
		return
	}

	h.cache.SetJSON(cctx, subCategoriesListKey, subCategories)

	ctx.JSON(http.StatusOK, subCategories)
}

func (h *SubCategoriesHandler) Update(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondNotFound(ctx, "SubCategory not found")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	current, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrSubCategoryNotFound) {
			RespondNotFound(ctx, "SubCategory not found")
			return
		}

		h.logInternal(ctx, "subcategory update load failed", err)
		RespondInternal(ctx)
		return
	}

	var req taxonomy.UpdateSubCategoryRequest

	if !BindForm(ctx, &req) {
		return
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.CategoryID != nil {
		current.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.Status != nil {
		if !taxonomy.ValidSubStatus(*req.Status) {
			RespondBadRequest(ctx, "Status must be Active or Inactive", nil)
			return
		}
		current.Status = *req.Status
	}

	oldImage := current.Profile

	image, ok := formImage(ctx, h.images, "profile", "categories")

	if !ok {
		return
	}

	if image != "" {
		current.Profile = image
	}

	current.Category = nil

	updated, err := h.store.Update(cctx, current)

	if err != nil {
		if image != "" {
			dropImage(cctx, h.images, image)
		}

		switch {
		case errors.Is(err, postgres.ErrSubCategoryNotFound):
			RespondNotFound(ctx, "SubCategory not found")
		case errors.Is(err, postgres.ErrCategoryNotFound):
			RespondBadRequest(ctx, "Category does not exist", nil)
		default:
			h.logInternal(ctx, "subcategory update failed", err)
			RespondInternal(ctx)
		}
		return
	}

	if image != "" && oldImage != "" && oldImage != image {
		dropImage(cctx, h.images, oldImage)
	}

	h.cache.Invalidate(cctx, subCategoriesListKey)

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "SubCategory updated successfully",
		"subCategory": updated,
	})
}

func (h *SubCategoriesHandler) Delete(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondNotFound(ctx, "SubCategory not found")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err = h.store.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrSubCategoryNotFound) {
			RespondNotFound(ctx, "SubCategory not found")
			return
		}

		h.logInternal(ctx, "subcategory delete failed", err)
		RespondInternal(ctx)
		return
	}

	h.cache.Invalidate(cctx, subCategoriesListKey)

	RespondMessage(ctx, http.StatusOK, "SubCategory deleted successfully")
}

func (h *SubCategoriesHandler) logInternal(ctx *gin.Context, msg string, err error) {
	reqID, _ := ctx.Get(middlewares.CtxRequestID)
	h.log.Error(msg, "err", err, "request_id", reqID)
}
