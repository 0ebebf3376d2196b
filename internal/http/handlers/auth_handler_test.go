package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/services"
)

func TestRegister(t *testing.T) {
	email := "ivan@example.com"
	user := &domain.User{ID: uuid.NewString(), Email: &email, Name: "Иван"}

	tests := []struct {
		name       string
		body       string
		auth       *stubAuth
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       `{"identifier":"ivan@example.com","name":"Иван","password":"secret123"}`,
			auth:       &stubAuth{user: user},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short password",
			body:       `{"identifier":"ivan@example.com","name":"Иван","password":"123"}`,
			auth:       &stubAuth{},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "missing name",
			body:       `{"identifier":"ivan@example.com","password":"secret123"}`,
			auth:       &stubAuth{},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "duplicate",
			body:       `{"identifier":"ivan@example.com","name":"Иван","password":"secret123"}`,
			auth:       &stubAuth{err: services.ErrUserExists},
			wantStatus: http.StatusConflict,
			wantCode:   ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(New(&stubCatalog{}, &stubDocs{}, tt.auth, &stubVerify{}, nil, ""))
			w := perform(t, r, http.MethodPost, "/auth/register", tt.body, nil)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode != "" {
				if resp := decodeError(t, w); resp.Code != tt.wantCode {
					t.Fatalf("code = %q; want %q", resp.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestLogin(t *testing.T) {
	email := "ivan@example.com"
	user := &domain.User{ID: uuid.NewString(), Email: &email}

	t.Run("ok", func(t *testing.T) {
		r := newTestRouter(New(&stubCatalog{}, &stubDocs{}, &stubAuth{user: user, token: "jwt-token"}, &stubVerify{}, nil, ""))
		w := perform(t, r, http.MethodPost, "/auth/login", `{"identifier":"ivan@example.com","password":"secret123"}`, nil)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", w.Code)
		}
		var resp LoginResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Token != "jwt-token" || resp.User.ID != user.ID {
			t.Fatalf("unexpected body: %+v", resp)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		r := newTestRouter(New(&stubCatalog{}, &stubDocs{}, &stubAuth{err: services.ErrInvalidCredentials}, &stubVerify{}, nil, ""))
		w := perform(t, r, http.MethodPost, "/auth/login", `{"identifier":"ivan@example.com","password":"wrong"}`, nil)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d; want 401", w.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		r := newTestRouter(New(&stubCatalog{}, &stubDocs{}, &stubAuth{}, &stubVerify{}, nil, ""))
		w := perform(t, r, http.MethodPost, "/auth/login", `{"identifier":"ivan@example.com"}`, nil)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d; want 400", w.Code)
		}
	})
}

func TestSendCode(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		verify := &stubVerify{}
		r := newTestRouter(New(&stubCatalog{}, &stubDocs{}, &stubAuth{}, verify, nil, ""))
		w := perform(t, r, http.MethodPost, "/verification/send", `{"identifier":"  +79991234567 "}`, nil)

		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d; want 204", w.Code)
		}
		// Identifier is trimmed before delegation.
		if len(verify.sentTo) != 1 || verify.sentTo[0] != "+79991234567" {
			t.Fatalf("sentTo = %v", verify.sentTo)
		}
	})

	t.Run("delivery failed", func(t *testing.T) {
		r := newTestRouter(New(&stubCatalog{}, &stubDocs{}, &stubAuth{}, &stubVerify{sendErr: services.ErrSendFailed}, nil, ""))
		w := perform(t, r, http.MethodPost, "/verification/send", `{"identifier":"+79991234567"}`, nil)

		if w.Code != http.StatusBadGateway {
			t.Fatalf("status = %d; want 502", w.Code)
		}
		if resp := decodeError(t, w); resp.Code != ErrCodeSendFailed {
			t.Fatalf("code = %q; want %q", resp.Code, ErrCodeSendFailed)
		}
	})
}

func TestVerifyCode(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		verify     *stubVerify
		wantStatus int
		wantCode   string
	}{
		{
			name:       "accepted",
			body:       `{"identifier":"+79991234567","code":"482913"}`,
			verify:     &stubVerify{},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "wrong length",
			body:       `{"identifier":"+79991234567","code":"12345"}`,
			verify:     &stubVerify{},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "wrong code",
			body:       `{"identifier":"+79991234567","code":"000000"}`,
			verify:     &stubVerify{verifyErr: services.ErrCodeInvalid},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeCodeInvalid,
		},
		{
			name:       "expired",
			body:       `{"identifier":"+79991234567","code":"482913"}`,
			verify:     &stubVerify{verifyErr: services.ErrCodeExpired},
			wantStatus: http.StatusGone,
			wantCode:   ErrCodeCodeExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(New(&stubCatalog{}, &stubDocs{}, &stubAuth{}, tt.verify, nil, ""))
			w := perform(t, r, http.MethodPost, "/verification/verify", tt.body, nil)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d", w.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if resp := decodeError(t, w); resp.Code != tt.wantCode {
					t.Fatalf("code = %q; want %q", resp.Code, tt.wantCode)
				}
			}
		})
	}
}
