package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("segredo-de-teste")

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func newAuthRouter() (*gin.Engine, *[]*domain.Principal) {
	gin.SetMode(gin.TestMode)
	var seen []*domain.Principal
	r := gin.New()
	r.GET("/secure", RequireAuth(testSecret), func(c *gin.Context) {
		seen = append(seen, Principal(c))
		if domain.PrincipalFromContext(c.Request.Context()) == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "principal ausente no ctx"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, &seen
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	r, seen := newAuthRouter()

	tok := signTestToken(t, jwt.MapClaims{
		"sub":  "user-1",
		"role": domain.RoleAdmin,
		"name": "Ana",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(*seen) != 1 || (*seen)[0] == nil || (*seen)[0].ID != "user-1" || !(*seen)[0].IsAdmin() {
		t.Fatalf("principal not propagated: %+v", *seen)
	}
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	r, _ := newAuthRouter()

	tok := signTestToken(t, jwt.MapClaims{
		"sub": "user-2",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure?token="+tok, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRequireAuthRejectsMissingAndExpired(t *testing.T) {
	r, _ := newAuthRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d, want 401", w.Code)
	}

	expired := signTestToken(t, jwt.MapClaims{
		"sub": "user-3",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: status = %d, want 401", w.Code)
	}
}
