// Account HTTP handlers.
//
// This file exposes REST endpoints for accounts and contact verification:
//   - POST /auth/register       (create an account by email or phone)
//   - POST /auth/login          (verify credentials, issue a bearer token)
//   - POST /verification/send   (deliver a one-time code)
//   - POST /verification/verify (consume a one-time code)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/services"
)

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	// Identifier is an email address or a phone number.
	Identifier string `json:"identifier" binding:"required,min=3" example:"ivan@example.com"`
	// Name is the display name shown in generated documents.
	Name string `json:"name" binding:"required,min=1,max=255" example:"Иван Петров"`
	// Password must be at least 6 characters.
	Password string `json:"password" binding:"required,min=6" example:"s3cret-pass"`
}

// RegisterResponse wraps the created account.
type RegisterResponse struct {
	User *domain.User `json:"user"`
}

// LoginRequest is the JSON payload for signing in.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required" example:"ivan@example.com"`
	Password   string `json:"password" binding:"required" example:"s3cret-pass"`
}

// LoginResponse carries the issued bearer token and the account it belongs to.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// SendCodeRequest is the JSON payload for requesting a one-time code.
type SendCodeRequest struct {
	// Identifier is the email address or phone number to deliver the code to.
	Identifier string `json:"identifier" binding:"required,min=3" example:"+79991234567"`
}

// VerifyCodeRequest is the JSON payload for consuming a one-time code.
type VerifyCodeRequest struct {
	Identifier string `json:"identifier" binding:"required,min=3" example:"+79991234567"`
	Code       string `json:"code" binding:"required,len=6" example:"482913"`
}

//
// Handlers
//

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Registers a new account keyed by email or phone number.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Account payload"
//
// @Success     201  {object}  handlers.RegisterResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse "Identifier already registered"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "identifier, name and password (min 6 chars) required")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), strings.TrimSpace(req.Identifier), strings.TrimSpace(req.Name), req.Password)
	if err != nil {
		switch err {
		case services.ErrUserExists:
			fail(c, http.StatusConflict, ErrCodeConflict, "identifier already registered")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeRegisterFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, RegisterResponse{User: user})
}

// Login godoc
// @ID          login
// @Summary     Sign in
// @Description Verifies credentials and issues a signed bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "identifier and password required")
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), strings.TrimSpace(req.Identifier), req.Password)
	if err != nil {
		switch err {
		case services.ErrInvalidCredentials:
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: token, User: user})
}

// SendCode godoc
// @ID          sendVerificationCode
// @Summary     Send a verification code
// @Description Issues a fresh 6-digit code and delivers it by email or SMS,
// @Description depending on the identifier shape. A new code supersedes any
// @Description previous unconsumed one.
// @Tags        Verification
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SendCodeRequest  true  "Delivery target"
//
// @Success     204  "Code sent"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse "Delivery failed"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /verification/send [post]
func (h *Handlers) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "identifier required")
		return
	}

	if err := h.verify.Send(c.Request.Context(), strings.TrimSpace(req.Identifier)); err != nil {
		switch err {
		case services.ErrSendFailed:
			fail(c, http.StatusBadGateway, ErrCodeSendFailed, "code delivery failed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// VerifyCode godoc
// @ID          verifyCode
// @Summary     Verify a one-time code
// @Description Consumes a previously sent code. A code can be consumed once;
// @Description expired codes are reported distinctly from wrong ones.
// @Tags        Verification
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.VerifyCodeRequest  true  "Code payload"
//
// @Success     204  "Code accepted"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request or wrong code"
// @Failure     410  {object}  handlers.ErrorResponse "Code expired"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /verification/verify [post]
func (h *Handlers) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "identifier and 6-digit code required")
		return
	}

	if err := h.verify.Verify(c.Request.Context(), strings.TrimSpace(req.Identifier), strings.TrimSpace(req.Code)); err != nil {
		switch err {
		case services.ErrCodeInvalid:
			fail(c, http.StatusBadRequest, ErrCodeCodeInvalid, "wrong verification code")
		case services.ErrCodeExpired:
			fail(c, http.StatusGone, ErrCodeCodeExpired, "verification code expired")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}
