package service

import (
	"errors"
	"fmt"
	"time"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// staffClaims is the payload of a till session token. Subject holds the
// staff ID.
type staffClaims struct {
	StoreID  string `json:"store_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTTokenService issues and checks HS256 session tokens for staff.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
	parser *jwt.Parser
}

func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// Generate signs a token for staff. The store claim scopes every request the
// token authorizes.
func (s *JWTTokenService) Generate(staff *domain.Staff) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := staffClaims{
		StoreID:  staff.StoreID.String(),
		Username: staff.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	var claims staffClaims
	token, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	staffID, err := parseClaimID("sub", claims.Subject)
	if err != nil {
		return nil, err
	}
	storeID, err := parseClaimID("store_id", claims.StoreID)
	if err != nil {
		return nil, err
	}

	return &ports.TokenClaims{
		StaffID:  staffID,
		StoreID:  storeID,
		Username: claims.Username,
	}, nil
}

func parseClaimID(name, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing %s claim", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s claim: %w", name, err)
	}
	return id, nil
}
