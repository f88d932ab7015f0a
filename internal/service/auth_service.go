// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pquerna/otp/totp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this username or email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid username or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrTOTPRequired         = errors.New("two-factor code required")
	ErrTOTPInvalid          = errors.New("two-factor code is invalid")
	ErrTOTPNotEnrolled      = errors.New("two-factor enrolment has not been started")
	ErrTOTPAlreadyEnabled   = errors.New("two-factor authentication is already enabled")
)

const totpIssuer = "rehab-app"

// AuthService handles registration, login and optional TOTP two-factor auth.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	// Login authenticates with password and, when the account has 2FA
	// enabled, a TOTP code. A correct password with a missing code returns
	// ErrTOTPRequired so the client can prompt for the second step.
	Login(ctx context.Context, username, password, totpCode string) (token string, user *domain.User, err error)
	// BeginTOTPEnrolment provisions a new secret and returns the otpauth://
	// URL to render as a QR code. The account stays on password-only login
	// until ConfirmTOTPEnrolment verifies a code.
	BeginTOTPEnrolment(ctx context.Context, userID primitive.ObjectID) (otpauthURL string, err error)
	ConfirmTOTPEnrolment(ctx context.Context, userID primitive.ObjectID, code string) error
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register handles new user registration.
func (s *authService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, errors.New("username, email and password cannot be empty")
	}

	// Pre-check both unique fields; the unique indexes still backstop races.
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID

	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, username, password, totpCode string) (token string, user *domain.User, err error) {
	if username == "" || password == "" {
		err = errors.New("username and password cannot be empty")
		return
	}

	user, err = s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
			return
		}
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		err = ErrAuthenticationFailed
		user = nil
		return
	}

	// Second factor, only once enrolment was confirmed.
	if user.TOTPEnabled {
		if totpCode == "" {
			user = nil
			return "", nil, ErrTOTPRequired
		}
		if !totp.Validate(totpCode, user.TOTPSecret) {
			user = nil
			return "", nil, ErrTOTPInvalid
		}
	}

	token, err = s.generateJWT(user)
	if err != nil {
		user = nil
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	user.TOTPSecret = ""
	return token, user, nil
}

// BeginTOTPEnrolment generates and stores a fresh secret for the user.
func (s *authService) BeginTOTPEnrolment(ctx context.Context, userID primitive.ObjectID) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.TOTPEnabled {
		return "", ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return "", err
	}

	if err := s.userRepo.SetTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return "", err
	}
	return key.URL(), nil
}

// ConfirmTOTPEnrolment verifies a code against the provisioned secret and
// switches the account to two-factor login.
func (s *authService) ConfirmTOTPEnrolment(ctx context.Context, userID primitive.ObjectID, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPEnabled {
		return ErrTOTPAlreadyEnabled
	}
	if user.TOTPSecret == "" {
		return ErrTOTPNotEnrolled
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return ErrTOTPInvalid
	}
	return s.userRepo.EnableTOTP(ctx, userID)
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    totpIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
