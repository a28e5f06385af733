package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amaravathi/marketplace/internal/auth"
	"github.com/amaravathi/marketplace/internal/domain/user"
	"github.com/amaravathi/marketplace/internal/domain/vendor"
	"github.com/amaravathi/marketplace/internal/http/handlers"
	"github.com/amaravathi/marketplace/internal/http/middlewares"
	"github.com/amaravathi/marketplace/internal/repo/postgres"
	"github.com/amaravathi/marketplace/internal/security"
)

// Fake repository implementation of the handlers.UserReader and
// handlers.UserWriter interfaces.

type fakeUsersRepo struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	createFn     func(ctx context.Context, u user.User) (user.User, error)
	getByIDFn    func(ctx context.Context, id int64) (user.User, error)
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}

	u.ID = 1
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return user.User{}, postgres.ErrUserNotFound
}

func signupFields() map[string]string {
	return map[string]string{
		"first_name":    "Asha",
		"email_id":      "asha@example.com",
		"password":      "secret123",
		"mobile_number": "9876543210",
	}
}

func TestSignUpHandler(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		repoSetup      func(*fakeUsersRepo)
		wantStatusCode int
		wantMessage    string
	}{
		{
			name:           "success",
			fields:         signupFields(),
			wantStatusCode: http.StatusCreated,
			wantMessage:    "User registered successfully",
		},
		{
			name: "missing_fields",
			fields: map[string]string{
				"first_name": "Asha",
				"email_id":   "asha@example.com",
			},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "Name, Email, Phone, and Password are required",
		},
		{
			name:   "duplicate_email_precheck",
			fields: signupFields(),
			repoSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{ID: 7, Email: email}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "User already exists with this email",
		},
		// precheck missed the row but the unique index caught it
		{
			name:   "duplicate_email_unique_index",
			fields: signupFields(),
			repoSetup: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) (user.User, error) {
					return user.User{}, postgres.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "User already exists with this email",
		},
		{
			name:   "repo_error",
			fields: signupFields(),
			repoSetup: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantMessage:    "Server error",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{}, nil, discardLog())

			r := setupRouter(http.MethodPost, "/api/auth/signup", h.SignUp)

			body, contentType := multipartBody(t, tt.fields)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", body)
			req.Header.Set("Content-Type", contentType)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			var resp struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Message != tt.wantMessage {
				t.Fatalf("got message %q, want %q", resp.Message, tt.wantMessage)
			}
		})
	}
}

func TestSignUpHandler_EmailNormalized(t *testing.T) {
	repo := &fakeUsersRepo{}

	var createdEmail string
	repo.createFn = func(ctx context.Context, u user.User) (user.User, error) {
		createdEmail = u.Email
		u.ID = 1
		return u, nil
	}

	h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{}, nil, discardLog())
	r := setupRouter(http.MethodPost, "/api/auth/signup", h.SignUp)

	fields := signupFields()
	fields["email_id"] = "  Asha@Example.COM "

	body, contentType := multipartBody(t, fields)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if createdEmail != "asha@example.com" {
		t.Fatalf("stored email %q, want it trimmed and lowercased", createdEmail)
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	known := user.User{
		ID:           42,
		FirstName:    "Asha",
		Email:        "asha@example.com",
		PasswordHash: hash,
	}

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeUsersRepo)
		wantStatusCode int
		wantToken      bool
	}{
		{
			name: "success",
			body: `{"email_id": "asha@example.com", "password": "secret123"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return known, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantToken:      true,
		},
		// mixed-case input must hit the same row as the canonical form
		{
			name: "success_email_normalized",
			body: `{"email_id": "  Asha@Example.COM ", "password": "secret123"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					if email != "asha@example.com" {
						return user.User{}, postgres.ErrUserNotFound
					}
					return known, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantToken:      true,
		},
		{
			name:           "unknown_email",
			body:           `{"email_id": "nobody@example.com", "password": "secret123"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "wrong_password",
			body: `{"email_id": "asha@example.com", "password": "wrong"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return known, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid_payload",
			body:           `{"email_id": "not-an-email"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{}, nil, discardLog())
			r := setupRouter(http.MethodPost, "/api/auth/login", h.Login)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			var resp struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if tt.wantToken && resp.Token == "" {
				t.Fatalf("expected a token in the response, body=%s", w.Body.String())
			}
			if !tt.wantToken && resp.Token != "" {
				t.Fatalf("got a token on a failed login, body=%s", w.Body.String())
			}
		})
	}
}

// Unknown-email and wrong-password logins must be indistinguishable to the
// caller.
func TestLoginHandler_NoAccountEnumeration(t *testing.T) {
	hash, err := security.HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	repo := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email == "asha@example.com" {
				return user.User{ID: 1, Email: email, PasswordHash: hash}, nil
			}
			return user.User{}, postgres.ErrUserNotFound
		},
	}

	h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{}, nil, discardLog())
	r := setupRouter(http.MethodPost, "/api/auth/login", h.Login)

	bodies := []string{
		`{"email_id": "nobody@example.com", "password": "secret123"}`,
		`{"email_id": "asha@example.com", "password": "wrong"}`,
	}

	var responses []string

	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
		}

		responses = append(responses, w.Body.String())
	}

	if responses[0] != responses[1] {
		t.Fatalf("rejection bodies differ: %q vs %q", responses[0], responses[1])
	}

	if !strings.Contains(responses[0], "Invalid credentials") {
		t.Fatalf("unexpected rejection body: %s", responses[0])
	}
}

// Me goes through the real token manager and the auth middleware so the whole
// chain is exercised: issue, verify, resolve, respond.
func TestMeHandler(t *testing.T) {
	manager := auth.NewManager("test-secret", time.Hour)

	known := user.User{ID: 42, FirstName: "Asha", Email: "asha@example.com"}

	repo := &fakeUsersRepo{
		getByIDFn: func(ctx context.Context, id int64) (user.User, error) {
			if id == known.ID {
				return known, nil
			}
			return user.User{}, postgres.ErrUserNotFound
		},
	}

	vendors := &fakeVendorStore{
		getByIDFn: func(ctx context.Context, id int64) (vendor.Vendor, error) {
			return vendor.Vendor{ID: id, Name: "Shop"}, nil
		},
	}

	h := handlers.NewAuthHandler(repo, repo, manager, nil, discardLog())
	gate := middlewares.NewAuthMiddleware(manager, repo, vendors)

	r := setupRouter(http.MethodGet, "/api/auth/me", gate.RequireAuth(), h.Me)

	userToken, err := manager.Generate(auth.KindUser, known.ID, known.Email, known.FirstName)
	if err != nil {
		t.Fatalf("failed to generate user token: %v", err)
	}

	vendorToken, err := manager.Generate(auth.KindVendor, 9, "shop@example.com", "")
	if err != nil {
		t.Fatalf("failed to generate vendor token: %v", err)
	}

	tests := []struct {
		name           string
		authorization  string
		wantStatusCode int
	}{
		{
			name:           "success",
			authorization:  "Bearer " + userToken,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "no_token",
			authorization:  "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "garbage_token",
			authorization:  "Bearer not.a.token",
			wantStatusCode: http.StatusUnauthorized,
		},
		// a vendor token is authenticated but this route serves users only
		{
			name:           "vendor_token",
			authorization:  "Bearer " + vendorToken,
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)

			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp user.User
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.ID != known.ID || resp.Email != known.Email {
					t.Fatalf("got user %+v, want %+v", resp, known)
				}
				if strings.Contains(w.Body.String(), "password") {
					t.Fatalf("password material leaked: %s", w.Body.String())
				}
			}
		})
	}
}
