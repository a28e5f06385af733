package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h...)

	return r
}

// formPart describes one file part of a multipart body.

type formPart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// multipartBody builds a multipart/form-data body out of plain fields plus
// optional file parts. CreateFormFile would stamp application/octet-stream on
// every part, so the parts are written by hand to control the content type.
func multipartBody(t *testing.T, fields map[string]string, parts ...formPart) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}

	for _, p := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))

		// an empty contentType builds a part that declares no type at all
		if p.contentType != "" {
			header.Set("Content-Type", p.contentType)
		}

		part, err := w.CreatePart(header)

		if err != nil {
			t.Fatalf("create part %s: %v", p.field, err)
		}

		if _, err := part.Write(p.data); err != nil {
			t.Fatalf("write part %s: %v", p.field, err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	return &buf, w.FormDataContentType()
}

// Fake implementations of the handler collaborators.

type fakeIssuer struct {
	generateFn func(kind string, id int64, email, firstName string) (string, error)
}

func (f *fakeIssuer) Generate(kind string, id int64, email, firstName string) (string, error) {
	if f.generateFn != nil {
		return f.generateFn(kind, id, email, firstName)
	}

	return "test-token", nil
}

type fakeUploader struct {
	uploadFn func(prefix, originalName string, data []byte) (string, error)
	deleted  []string
}

func (f *fakeUploader) Upload(ctx context.Context, prefix, originalName string, data []byte) (string, error) {
	if f.uploadFn != nil {
		return f.uploadFn(prefix, originalName, data)
	}

	return prefix + "/" + originalName, nil
}

func (f *fakeUploader) Delete(ctx context.Context, objectName string) error {
	f.deleted = append(f.deleted, objectName)

	return nil
}

type fakeCache struct {
	getFn       func(key string, dest any) bool
	setKeys     []string
	invalidated []string
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dest any) bool {
	if f.getFn != nil {
		return f.getFn(key, dest)
	}

	return false
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, val any) {
	f.setKeys = append(f.setKeys, key)
}

func (f *fakeCache) Invalidate(ctx context.Context, keys ...string) {
	f.invalidated = append(f.invalidated, keys...)
}

func (f *fakeCache) invalidatedKey(key string) bool {
	for _, k := range f.invalidated {
		if k == key {
			return true
		}
	}

	return false
}
