package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const secret = "0123456789abcdef0123456789abcdef"

var issuedAt = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestVerifier(at time.Time) *Verifier {
	v := NewVerifier(secret, "fintrack")
	v.now = func() time.Time { return at }
	return v
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestIssueAndVerify(t *testing.T) {
	owner := uuid.New()
	token, err := IssueToken(secret, "fintrack", owner, time.Hour, issuedAt)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	got, err := newTestVerifier(issuedAt.Add(30 * time.Minute)).Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got != owner {
		t.Errorf("Verify() = %s, want %s", got, owner)
	}
}

func TestVerify_Rejections(t *testing.T) {
	owner := uuid.New().String()
	exp := issuedAt.Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token func(t *testing.T) string
		at    time.Time
	}{
		{
			name: "expired",
			token: func(t *testing.T) string {
				tok, _ := IssueToken(secret, "fintrack", uuid.MustParse(owner), time.Hour, issuedAt)
				return tok
			},
			at: issuedAt.Add(2 * time.Hour),
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				tok, _ := IssueToken(strings.Repeat("x", 32), "fintrack", uuid.MustParse(owner), time.Hour, issuedAt)
				return tok
			},
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				tok, _ := IssueToken(secret, "someone-else", uuid.MustParse(owner), time.Hour, issuedAt)
				return tok
			},
		},
		{
			name: "no expiry",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"user_id": owner, "iss": "fintrack"})
			},
		},
		{
			name: "owner is not a uuid",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"user_id": "42", "iss": "fintrack", "exp": exp})
			},
		},
		{
			name: "no owner claim",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"iss": "fintrack", "exp": exp})
			},
		},
		{
			name: "unsigned",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"user_id": owner, "iss": "fintrack", "exp": exp})
			},
		},
		{
			name:  "garbage",
			token: func(t *testing.T) string { return "not.a.jwt" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			if at.IsZero() {
				at = issuedAt
			}
			_, err := newTestVerifier(at).Verify(tt.token(t))
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestVerify_SubjectFallback(t *testing.T) {
	owner := uuid.New()
	tok := sign(t, jwt.SigningMethodHS384, []byte(secret), jwt.MapClaims{
		"sub": owner.String(),
		"iss": "fintrack",
		"exp": issuedAt.Add(time.Hour).Unix(),
	})
	got, err := newTestVerifier(issuedAt).Verify(tok)
	if err != nil || got != owner {
		t.Errorf("Verify() = %s, %v; want %s", got, err, owner)
	}
}

func TestMiddleware(t *testing.T) {
	owner := uuid.New()
	valid, _ := IssueToken(secret, "fintrack", owner, time.Hour, issuedAt)
	v := newTestVerifier(issuedAt)

	var seen string
	h := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = OwnerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Not authorized, no token"},
		{"basic auth", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "Not authorized, no token"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "Not authorized, no token"},
		{"bad token", "Bearer abc.def.ghi", http.StatusUnauthorized, "Not authorized, token failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			r := httptest.NewRequest(http.MethodGet, "/api/v1/expense/get", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if seen != owner.String() {
					t.Errorf("owner in context = %q, want %q", seen, owner)
				}
				return
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["message"] != tt.wantMsg {
				t.Errorf("message = %q, want %q", body["message"], tt.wantMsg)
			}
		})
	}
}

func TestOwnerFromContext(t *testing.T) {
	if _, err := OwnerFromContext(context.Background()); !errors.Is(err, ErrNoOwner) {
		t.Errorf("OwnerFromContext(empty) error = %v", err)
	}
	id := uuid.New()
	got, err := OwnerFromContext(WithOwner(context.Background(), id))
	if err != nil || got != id.String() {
		t.Errorf("OwnerFromContext() = %q, %v", got, err)
	}
}

func TestIssueToken_Validation(t *testing.T) {
	if _, err := IssueToken(secret, "", uuid.Nil, time.Hour, issuedAt); err == nil {
		t.Error("expected error for nil owner")
	}
	if _, err := IssueToken(secret, "", uuid.New(), 0, issuedAt); err == nil {
		t.Error("expected error for zero ttl")
	}
}
