package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/keygate/keygate/internal/model"
	"github.com/keygate/keygate/internal/store"
)

// ErrInvalidCredentials is returned for both unknown-email and
// wrong-password login attempts. The two cases are indistinguishable to the
// caller to prevent account enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenTTL is how long an admin session token stays valid.
const TokenTTL = time.Hour

// bcryptCost is the fixed work factor for admin password hashing.
const bcryptCost = 10

// Principal is the decoded identity carried by a valid session token.
type Principal struct {
	AdminID int64
	Email   string
	Role    string
}

// AuthService manages admin accounts and the JWT session tokens that guard
// privileged endpoints.
type AuthService struct {
	store     *store.Store
	jwtSecret []byte
}

// NewAuthService creates an AuthService backed by the given store, signing
// tokens with jwtSecret.
func NewAuthService(st *store.Store, jwtSecret string) *AuthService {
	return &AuthService{
		store:     st,
		jwtSecret: []byte(jwtSecret),
	}
}

// CreateAdmin hashes the password and persists a new admin account.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (*model.Admin, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	admin := &model.Admin{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Authenticate verifies the email/password pair against the stored bcrypt
// hash. Unknown email and wrong password fail identically.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.Admin, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

// IssueToken creates a signed session token for the given admin, valid for
// TokenTTL from now.
func (s *AuthService) IssueToken(admin *model.Admin) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		AdminID: admin.ID,
		Email:   admin.Email,
		Role:    "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			Issuer:    "keygate",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies a session token's signature and expiry and returns
// the embedded principal. Verification is stateless; no revocation list is
// consulted.
func (s *AuthService) ValidateToken(tokenStr string) (*Principal, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !token.Valid {
		return nil, ErrInvalidCredentials
	}

	return &Principal{
		AdminID: claims.AdminID,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}

type sessionClaims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}
