// Package auth verifies HMAC-signed bearer tokens and carries the owner id
// of the request in its context.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fintrack/internal/log"
)

type ctxKey string

const ownerKey ctxKey = "owner_id"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoOwner      = errors.New("user not authenticated")
)

// Verifier validates tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
	logger *log.Logger
}

// NewVerifier builds a verifier. An empty issuer disables the iss check.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
		logger: log.Default(log.ComponentAuth),
	}
}

// Verify parses tokenStr and returns the owner it was issued for. The owner
// is the user_id claim, or sub when user_id is absent.
func (v *Verifier) Verify(tokenStr string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}

	rawUID, _ := claims["user_id"].(string)
	if rawUID == "" {
		rawUID, _ = claims.GetSubject()
	}
	if rawUID == "" {
		return uuid.Nil, fmt.Errorf("%w: user_id missing", ErrInvalidToken)
	}

	uid, err := uuid.Parse(rawUID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid user_id", ErrInvalidToken)
	}
	return uid, nil
}

// Middleware rejects requests without a valid bearer token with 401.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := bearerToken(r)
		if err != nil {
			unauthorized(w, "Not authorized, no token")
			return
		}

		uid, err := v.Verify(tokenStr)
		if err != nil {
			v.logger.WarnContext(r.Context(), "Token rejected",
				log.FieldPath, r.URL.Path,
				log.FieldError, err)
			unauthorized(w, "Not authorized, token failed")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), uid)))
	})
}

func bearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="fintrack"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// WithOwner stores the authenticated owner in ctx.
func WithOwner(ctx context.Context, owner uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerKey, owner.String())
}

// OwnerFromContext returns the authenticated owner id.
func OwnerFromContext(ctx context.Context) (string, error) {
	owner, ok := ctx.Value(ownerKey).(string)
	if !ok || owner == "" {
		return "", ErrNoOwner
	}
	return owner, nil
}

// IssueToken mints an HS256 token for owner valid for ttl from now.
func IssueToken(secret, issuer string, owner uuid.UUID, ttl time.Duration, now time.Time) (string, error) {
	if owner == uuid.Nil {
		return "", errors.New("owner id is required")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	claims := jwt.MapClaims{
		"user_id": owner.String(),
		"sub":     owner.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
