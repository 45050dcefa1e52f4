package services

import (
	"errors"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const TOKEN_TTL = 24 * time.Hour

type CustomClaims struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

type Authentication struct {
	secret string
}

func NewAuthentication(secret string) (*Authentication, error) {
	if secret == "" {
		return nil, errors.New("empty jwt secret")
	}
	return &Authentication{secret}, nil
}

func (authentication *Authentication) CreateToken(creator *models.CreatorFromAuth) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		ID:          creator.ID,
		Username:    creator.Username,
		DisplayName: creator.DisplayName,
		Role:        creator.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TOKEN_TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(authentication.secret))
}

func (authentication *Authentication) Validate(token string) (*models.CreatorFromAuth, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return []byte(authentication.secret), nil
	}
	jwtToken, err := jwt.ParseWithClaims(token, &CustomClaims{}, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	if claims.ID <= 0 {
		return nil, errors.New("invalid token subject")
	}

	role := claims.Role
	if role == "" {
		role = models.ROLE_CREATOR
	}

	return &models.CreatorFromAuth{
		ID:          claims.ID,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		Role:        role,
	}, nil
}
