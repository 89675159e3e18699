package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"org-dashboard-backend/pkg/models"
)

// Token lifetimes
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Token validation failures
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidTokenType = errors.New("invalid token type")
)

// JWTService JWT服务
type JWTService struct {
	secretKey []byte
	now       func() time.Time
}

// NewJWTService 创建JWT服务
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
}

// GenerateToken signs a token of tokenType for the session, valid for ttl
func (j *JWTService) GenerateToken(sess models.Session, tokenType string, ttl time.Duration) (string, int64, error) {
	now := j.now()
	expiry := now.Add(ttl)

	claims := &models.TokenClaims{
		UserID: sess.UserID,
		OrgID:  sess.OrgID,
		Type:   tokenType,
		Exp:    expiry.Unix(),
		Iat:    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate %s token: %w", tokenType, err)
	}
	return tokenString, expiry.Unix(), nil
}

// GenerateAccessToken 生成访问令牌
func (j *JWTService) GenerateAccessToken(sess models.Session) (string, int64, error) {
	return j.GenerateToken(sess, models.TokenTypeAccess, AccessTokenTTL)
}

// GenerateTokenPair 生成访问令牌和刷新令牌对
func (j *JWTService) GenerateTokenPair(sess models.Session) (accessToken, refreshToken string, expiresIn int64, err error) {
	accessToken, expiresIn, err = j.GenerateAccessToken(sess)
	if err != nil {
		return "", "", 0, err
	}
	refreshToken, _, err = j.GenerateToken(sess, models.TokenTypeRefresh, RefreshTokenTTL)
	if err != nil {
		return "", "", 0, err
	}
	return accessToken, refreshToken, expiresIn, nil
}

// ValidateToken 验证令牌
func (j *JWTService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// 检查是否过期
	if j.now().Unix() > claims.Exp {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

// ValidateAccessToken accepts only access tokens and returns the caller session
func (j *JWTService) ValidateAccessToken(tokenString string) (models.Session, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return models.Session{}, err
	}
	if claims.Type != models.TokenTypeAccess {
		return models.Session{}, fmt.Errorf("%w: expected access, got %s", ErrInvalidTokenType, claims.Type)
	}
	return claims.Session(), nil
}

// RefreshAccessToken 使用刷新令牌生成新的访问令牌
func (j *JWTService) RefreshAccessToken(refreshToken string) (string, int64, error) {
	claims, err := j.ValidateToken(refreshToken)
	if err != nil {
		return "", 0, fmt.Errorf("invalid refresh token: %w", err)
	}
	if claims.Type != models.TokenTypeRefresh {
		return "", 0, fmt.Errorf("%w: expected refresh, got %s", ErrInvalidTokenType, claims.Type)
	}
	return j.GenerateAccessToken(claims.Session())
}
