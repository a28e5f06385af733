package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amaravathi/marketplace/internal/domain/user"
	"github.com/amaravathi/marketplace/internal/http/handlers"
	"github.com/amaravathi/marketplace/internal/repo/postgres"
)

// A tiny payload is enough; the handlers validate name and content type, not
// the pixels.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestSignUpHandler_ProfileImage(t *testing.T) {
	tests := []struct {
		name           string
		part           formPart
		wantStatusCode int
		wantUpload     bool
		wantMessage    string
	}{
		{
			name: "png_accepted",
			part: formPart{
				field:       "profileImage",
				filename:    "avatar.png",
				contentType: "image/png",
				data:        pngBytes,
			},
			wantStatusCode: http.StatusCreated,
			wantUpload:     true,
		},
		{
			name: "jpg_accepted",
			part: formPart{
				field:       "profileImage",
				filename:    "avatar.JPG",
				contentType: "image/jpeg",
				data:        []byte{0xff, 0xd8, 0xff},
			},
			wantStatusCode: http.StatusCreated,
			wantUpload:     true,
		},
		{
			name: "gif_rejected",
			part: formPart{
				field:       "profileImage",
				filename:    "avatar.gif",
				contentType: "image/gif",
				data:        []byte("GIF89a"),
			},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "Only JPEG, JPG, and PNG images are allowed",
		},
		// a part that declares no type at all is rejected; the name alone
		// does not vouch for the payload
		{
			name: "missing_content_type_rejected",
			part: formPart{
				field:    "profileImage",
				filename: "avatar.png",
				data:     pngBytes,
			},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "Only JPEG, JPG, and PNG images are allowed",
		},
		// a png name hiding a different declared type is rejected too
		{
			name: "mismatched_content_type_rejected",
			part: formPart{
				field:       "profileImage",
				filename:    "avatar.png",
				contentType: "image/gif",
				data:        []byte("GIF89a"),
			},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "Only JPEG, JPG, and PNG images are allowed",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			uploader := &fakeUploader{}

			var uploadedPrefix string
			uploader.uploadFn = func(prefix, originalName string, data []byte) (string, error) {
				uploadedPrefix = prefix
				return prefix + "/" + originalName, nil
			}

			h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{}, uploader, discardLog())
			r := setupRouter(http.MethodPost, "/api/auth/signup", h.SignUp)

			body, contentType := multipartBody(t, signupFields(), tt.part)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", body)
			req.Header.Set("Content-Type", contentType)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantUpload && uploadedPrefix != "users" {
				t.Fatalf("got upload prefix %q, want %q", uploadedPrefix, "users")
			}
			if !tt.wantUpload && uploadedPrefix != "" {
				t.Fatalf("rejected image was still uploaded under %q", uploadedPrefix)
			}

			if tt.wantMessage != "" && !strings.Contains(w.Body.String(), tt.wantMessage) {
				t.Fatalf("expected message %q, body=%s", tt.wantMessage, w.Body.String())
			}
		})
	}
}

// The image is optional everywhere, so the handler must not require a store
// when no file arrives.
func TestSignUpHandler_NoImageNoStore(t *testing.T) {
	repo := &fakeUsersRepo{}

	h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{}, nil, discardLog())
	r := setupRouter(http.MethodPost, "/api/auth/signup", h.SignUp)

	body, contentType := multipartBody(t, signupFields())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestSignUpHandler_ImageWithoutStore(t *testing.T) {
	repo := &fakeUsersRepo{}

	h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{}, nil, discardLog())
	r := setupRouter(http.MethodPost, "/api/auth/signup", h.SignUp)

	body, contentType := multipartBody(t, signupFields(), formPart{
		field:       "profileImage",
		filename:    "avatar.png",
		contentType: "image/png",
		data:        pngBytes,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), "Image uploads are not available") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

// A failed insert must not strand the object that was just stored.
func TestSignUpHandler_UploadedImageDroppedOnCreateFailure(t *testing.T) {
	repo := &fakeUsersRepo{
		createFn: func(ctx context.Context, u user.User) (user.User, error) {
			return user.User{}, postgres.ErrEmailTaken
		},
	}

	uploader := &fakeUploader{}

	h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{}, uploader, discardLog())
	r := setupRouter(http.MethodPost, "/api/auth/signup", h.SignUp)

	body, contentType := multipartBody(t, signupFields(), formPart{
		field:       "profileImage",
		filename:    "avatar.png",
		contentType: "image/png",
		data:        pngBytes,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if len(uploader.deleted) != 1 || uploader.deleted[0] != "users/avatar.png" {
		t.Fatalf("expected the uploaded object to be dropped, deleted=%v", uploader.deleted)
	}
}
