package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired は有効期限切れのサインイントークンを示す。
	ErrTokenExpired = errors.New("signin token expired")
	// ErrTokenInvalid は署名不正・形式不正のサインイントークンを示す。
	ErrTokenInvalid = errors.New("signin token invalid")
)

// SigninTokenService は短命なサインイントークンの発行と検証を行う。
// トークンはHS256で署名されたJWTで、subjectにユーザーIDを持つ。
type SigninTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewSigninTokenService はSigninTokenServiceを生成する。
func NewSigninTokenService(secret string, ttl time.Duration) *SigninTokenService {
	return &SigninTokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue は指定ユーザーのサインイントークンを発行する。
func (s *SigninTokenService) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はサインイントークンを検証し、ユーザーIDを返す。
// 期限切れはErrTokenExpired、それ以外の検証失敗はErrTokenInvalidを返す。
func (s *SigninTokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
