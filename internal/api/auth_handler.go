package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserResponse excludes sensitive info like the password hash and TOTP secret.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	TOTPEnabled bool      `json:"totpEnabled"`
	CreatedAt   time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totpCode"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type ConfirmTOTPRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user
// @Description Creates a new user account.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} UserResponse "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (username or email already exists)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrHashingFailed) {
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token. Accounts with
// @Description two-factor auth enabled must also send a TOTP code.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials or TOTP code)"
// @Failure 428 {object} gin.H "TOTP code required"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Username, req.Password, req.TOTPCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTOTPRequired):
			// Password was correct; the client should re-submit with a code.
			c.JSON(http.StatusPreconditionRequired, gin.H{"totpRequired": true})
		case errors.Is(err, service.ErrAuthenticationFailed), errors.Is(err, service.ErrTOTPInvalid):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrTokenGeneration):
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// BeginTOTPEnrolment godoc
// @Summary Start two-factor enrolment
// @Description Provisions a TOTP secret and returns the otpauth:// URL for QR rendering.
// @Tags Auth
// @Produce json
// @Success 200 {object} gin.H "Enrolment started"
// @Failure 409 {object} gin.H "Already enabled"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/totp/enrol [post]
func (h *AuthHandler) BeginTOTPEnrolment(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	otpauthURL, err := h.authService.BeginTOTPEnrolment(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrTOTPAlreadyEnabled) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not start two-factor enrolment")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"otpauthUrl": otpauthURL})
}

// ConfirmTOTPEnrolment godoc
// @Summary Confirm two-factor enrolment
// @Description Verifies a TOTP code and enables two-factor login.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ConfirmTOTPRequest true "TOTP code"
// @Success 200 {object} gin.H "Two-factor enabled"
// @Failure 400 {object} gin.H "Invalid input or code"
// @Failure 409 {object} gin.H "Already enabled or not enrolled"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/totp/confirm [post]
func (h *AuthHandler) ConfirmTOTPEnrolment(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ConfirmTOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	err = h.authService.ConfirmTOTPEnrolment(c.Request.Context(), userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTOTPInvalid):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTOTPAlreadyEnabled), errors.Is(err, service.ErrTOTPNotEnrolled):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not confirm two-factor enrolment")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"totpEnabled": true})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:          user.ID.Hex(),
		Username:    user.Username,
		Email:       user.Email,
		TOTPEnabled: user.TOTPEnabled,
		CreatedAt:   user.CreatedAt,
	}
}
