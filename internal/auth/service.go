package auth

import (
	"context"
	"errors"
	"time"

	"backend-rollpath/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	RiderID string `json:"rider_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     db,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Rider, TokenResponse, error) {
	if req.Email == "" || req.DisplayName == "" || req.Password == "" {
		return Rider{}, TokenResponse{}, errors.New("email, display_name, password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Rider{}, TokenResponse{}, err
	}

	rider := Rider{
		ID:           uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		ChairModel:   req.ChairModel,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO riders (id, email, display_name, password_hash, chair_model)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at
	`, rider.ID, rider.Email, rider.DisplayName, rider.PasswordHash, rider.ChairModel)
	if err := row.Scan(&rider.CreatedAt, &rider.UpdatedAt); err != nil {
		return Rider{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, rider.ID)
	if err != nil {
		return Rider{}, TokenResponse{}, err
	}
	return rider, tokens, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Rider, TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, COALESCE(chair_model,''), created_at, updated_at
		FROM riders WHERE email = $1
	`, req.Email)

	var rider Rider
	if err := row.Scan(&rider.ID, &rider.Email, &rider.DisplayName, &rider.PasswordHash, &rider.ChairModel, &rider.CreatedAt, &rider.UpdatedAt); err != nil {
		return Rider{}, TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rider.PasswordHash), []byte(req.Password)); err != nil {
		return Rider{}, TokenResponse{}, errors.New("invalid credentials")
	}

	tokens, err := s.GenerateTokens(ctx, rider.ID)
	if err != nil {
		return Rider{}, TokenResponse{}, err
	}
	return rider, tokens, nil
}

func (s *Service) GenerateTokens(ctx context.Context, riderID string) (TokenResponse, error) {
	access, err := s.signToken(riderID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(riderID, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, riderID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	riderID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || riderID != claims.RiderID || time.Now().After(expiresAt) {
		return "", errors.New("refresh token invalid")
	}
	return claims.RiderID, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.RiderID, nil
}

func (s *Service) signToken(riderID string, ttl time.Duration) (string, error) {
	claims := Claims{
		RiderID: riderID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, riderID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, rider_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), riderID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT rider_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var riderID string
	var expiresAt time.Time
	if err := row.Scan(&riderID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return riderID, expiresAt, nil
}
