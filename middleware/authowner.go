package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"agentbazaar/models"
)

// OwnerClaims is the JWT payload for a logged-in owner session.
type OwnerClaims struct {
	Wallet  string `json:"wallet"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// IssueOwnerToken signs a session token for an owner account.
func IssueOwnerToken(owner *models.OwnerAccount, secret string, ttl time.Duration) (string, error) {
	claims := OwnerClaims{
		Wallet:  owner.Wallet,
		IsAdmin: owner.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "agentbazaar",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateOwnerToken validates a "Bearer <jwt>" Authorization header and
// returns the owner account.
func ValidateOwnerToken(r *http.Request, db *gorm.DB, secret string) (*models.OwnerAccount, *HTTPError) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Owner token required in Authorization header",
		}
	}
	raw := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &OwnerClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid or expired owner token",
		}
	}

	var owner models.OwnerAccount
	if result := db.Where("wallet = ?", claims.Wallet).First(&owner); result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, &HTTPError{
				StatusCode: http.StatusUnauthorized,
				Message:    "Owner account not found",
			}
		}
		return nil, &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Database error validating owner",
		}
	}
	return &owner, nil
}

// ValidateAdmin validates an owner token and requires the admin flag.
func ValidateAdmin(r *http.Request, db *gorm.DB, secret string) (*models.OwnerAccount, *HTTPError) {
	owner, httpErr := ValidateOwnerToken(r, db, secret)
	if httpErr != nil {
		return nil, httpErr
	}
	if !owner.IsAdmin {
		return nil, &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Admin privileges required",
		}
	}
	return owner, nil
}
