package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// ImageUploader is the slice of the object store the handlers need.
type ImageUploader interface {
	Upload(ctx context.Context, prefix, originalName string, data []byte) (string, error)
	Delete(ctx context.Context, objectName string) error
}

const imageRejectedMessage = "Only JPEG, JPG, and PNG images are allowed"

var allowedImageExts = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

func validImage(header *multipart.FileHeader) bool {
	ext := strings.ToLower(filepath.Ext(header.Filename))

	want, ok := allowedImageExts[ext]

	if !ok {
		return false
	}

	// the declared content type has to agree with the extension; a part
	// that declares nothing is rejected, not waved through
	ct := strings.ToLower(header.Header.Get("Content-Type"))

	return strings.HasPrefix(ct, want)
}

// formImage reads an optional single image from the named form field and
// stores it. Returns the stored object name ("" when no file was sent) and
// whether the request may proceed; on rejection the response is already
// written.
func formImage(ctx *gin.Context, store ImageUploader, field, prefix string) (string, bool) {
	header, err := ctx.FormFile(field)

	if err != nil {
		// no file part is fine, the image is optional everywhere
		return "", true
	}

	if store == nil {
		RespondBadRequest(ctx, "Image uploads are not available", nil)
		return "", false
	}

	if !validImage(header) {
		RespondBadRequest(ctx, imageRejectedMessage, nil)
		return "", false
	}

	f, err := header.Open()

	if err != nil {
		RespondInternal(ctx)
		return "", false
	}

	defer f.Close()

	data, err := io.ReadAll(f)

	if err != nil {
		RespondInternal(ctx)
		return "", false
	}

	name, err := store.Upload(ctx.Request.Context(), prefix, header.Filename, data)

	if err != nil {
		RespondInternal(ctx)
		return "", false
	}

	return name, true
}

// dropImage deletes a replaced or orphaned object, best effort.
func dropImage(ctx context.Context, store ImageUploader, objectName string) {
	if store == nil || objectName == "" {
		return
	}

	_ = store.Delete(ctx, objectName)
}
