package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims defines the payload for the JWT.
type JWTClaims struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	UserID string `json:"userID"`
	jwt.RegisteredClaims
}

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var (
	jwtSecret  []byte
	expiration = 24 * time.Hour
)

// Configure sets the signing secret and token lifetime. Called once
// from main before the router starts.
func Configure(secret, expirationStr string) error {
	if secret == "" {
		return errors.New("jwt secret must not be empty")
	}
	jwtSecret = []byte(secret)
	if expirationStr != "" {
		d, err := time.ParseDuration(expirationStr)
		if err != nil {
			return err
		}
		expiration = d
	}
	return nil
}

func GenerateJWT(email, role, userID string) (string, error) {
	expirationTime := time.Now().Add(expiration)
	claims := &JWTClaims{
		Email:  email,
		Role:   role,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT validates a token string and returns its claims.
func ParseJWT(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
