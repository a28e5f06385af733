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

type CategoryStore interface {
	Create(ctx context.Context, c taxonomy.Category) (taxonomy.Category, error)
	List(ctx context.Context) ([]taxonomy.Category, error)
	GetByID(ctx context.Context, id int64) (taxonomy.Category, error)
	Update(ctx context.Context, c taxonomy.Category) (taxonomy.Category, error)
	Delete(ctx context.Context, id int64) error
}

const categoriesListKey = "categories:list"

type CategoriesHandler struct {
	store  CategoryStore
	images ImageUploader
	cache  ListingCache
	log    *slog.Logger
}

func NewCategoriesHandler(store CategoryStore, images ImageUploader, cache ListingCache, log *slog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		store:  store,
		images: images,
		cache:  cache,
		log:    log,
	}
}

func (h *CategoriesHandler) Create(ctx *gin.Context) {
	var req taxonomy.CreateCategoryRequest

	if !BindForm(ctx, &req) {
		return
	}

	if req.Name == "" || req.Description == "" {
		RespondBadRequest(ctx, "Name and description are required", nil)
		return
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	image, ok := formImage(ctx, h.images, "profile", "categories")

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.store.Create(cctx, taxonomy.Category{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		Profile:     image,
	})

	if err != nil {
		dropImage(cctx, h.images, image)
		h.logInternal(ctx, "category create failed", err)
		RespondInternal(ctx)
		return
	}

	h.cache.Invalidate(cctx, categoriesListKey)

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Category created successfully",
		"category": created,
	})
}

// List is public and cached; the taxonomy changes rarely.
func (h *CategoriesHandler) List(ctx *gin.Context) {
	cctx := ctx.Request.Context()

	var cached []taxonomy.Category

	if h.cache.GetJSON(cctx, categoriesListKey, &cached) {
		ctx.JSON(http.StatusOK, cached)
		return
	}

	categories, err := h.store.List(cctx)

	if err != nil {
		h.logInternal(ctx, "category list failed", err)
		RespondInternal(ctx)
		return
	}

	h.cache.SetJSON(cctx, categoriesListKey, categories)

	ctx.JSON(http.StatusOK, categories)
}

func (h *CategoriesHandler) Update(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondNotFound(ctx, "Category not found")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	current, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrCategoryNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}

		h.logInternal(ctx, "category update load failed", err)
		RespondInternal(ctx)
		return
	}

	var req taxonomy.UpdateCategoryRequest

	if !BindForm(ctx, &req) {
		return
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.Status != nil {
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

	updated, err := h.store.Update(cctx, current)

	if err != nil {
		if image != "" {
			dropImage(cctx, h.images, image)
		}

		if errors.Is(err, postgres.ErrCategoryNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}

		h.logInternal(ctx, "category update failed", err)
		RespondInternal(ctx)
		return
	}

	if image != "" && oldImage != "" && oldImage != image {
		dropImage(cctx, h.images, oldImage)
	}

	h.cache.Invalidate(cctx, categoriesListKey, subCategoriesListKey)

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Category updated successfully",
		"category": updated,
	})
}

func (h *CategoriesHandler) Delete(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondNotFound(ctx, "Category not found")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err = h.store.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrCategoryNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}

		h.logInternal(ctx, "category delete failed", err)
		RespondInternal(ctx)
		return
	}

	// child subcategories went with the parent
	h.cache.Invalidate(cctx, categoriesListKey, subCategoriesListKey)

	RespondMessage(ctx, http.StatusOK, "Category deleted successfully")
}

func (h *CategoriesHandler) logInternal(ctx *gin.Context, msg string, err error) {
	reqID, _ := ctx.Get(middlewares.CtxRequestID)
	h.log.Error(msg, "err", err, "request_id", reqID)
}
