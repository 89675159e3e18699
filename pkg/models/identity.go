package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types issued by the identity provider
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Session is the caller identity handed explicitly to every action.
// Either field may be empty when the provider did not resolve it.
type Session struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// TokenClaims represents the JWT token claims
type TokenClaims struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id,omitempty"`
	Type   string `json:"type"` // "access" or "refresh"
	Exp    int64  `json:"exp"`
	Iat    int64  `json:"iat"`
}

// Session converts the claims into the caller identity
func (c *TokenClaims) Session() Session {
	return Session{UserID: c.UserID, OrgID: c.OrgID}
}

// GetExpirationTime implements jwt.Claims interface
func (c *TokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

// GetIssuedAt implements jwt.Claims interface
func (c *TokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

// GetNotBefore implements jwt.Claims interface
func (c *TokenClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims interface
func (c *TokenClaims) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements jwt.Claims interface
func (c *TokenClaims) GetSubject() (string, error) {
	return c.UserID, nil
}

// GetAudience implements jwt.Claims interface
func (c *TokenClaims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}

// Overview is the dashboard summary for one organization
type Overview struct {
	Posts          int                `json:"posts"`
	PublishedPosts int                `json:"published_posts"`
	Products       int                `json:"products"`
	Tasks          int                `json:"tasks"`
	TasksByStatus  map[TaskStatus]int `json:"tasks_by_status"`
	Columns        int                `json:"columns"`
}
