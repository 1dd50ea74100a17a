package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hexxt-git/knowdown/internal/constants"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := createSessionToken("player@example.com", "Player", time.Hour)
	if err != nil {
		t.Fatalf("createSessionToken: %v", err)
	}
	claims, err := parseAndValidateSession(token)
	if err != nil {
		t.Fatalf("parseAndValidateSession: %v", err)
	}
	if claims.Sub != "player@example.com" || claims.Name != "Player" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestSessionTokenTamperRejected(t *testing.T) {
	token, err := createSessionToken("player@example.com", "Player", time.Hour)
	if err != nil {
		t.Fatalf("createSessionToken: %v", err)
	}
	if _, err := parseAndValidateSession(token + "x"); err == nil {
		t.Fatal("tampered token must not validate")
	}
	if _, err := parseAndValidateSession("not.a.token"); err == nil {
		t.Fatal("garbage token must not validate")
	}
}

func TestSessionTokenExpiry(t *testing.T) {
	token, err := createSessionToken("player@example.com", "Player", -time.Minute)
	if err != nil {
		t.Fatalf("createSessionToken: %v", err)
	}
	if _, err := parseAndValidateSession(token); err == nil {
		t.Fatal("expired token must not validate")
	}
}

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, subjectFromContext(c))
	})

	// No cookie.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no cookie status = %d, want 401", w.Code)
	}

	// Valid session cookie.
	token, err := createSessionToken("player@example.com", "Player", time.Hour)
	if err != nil {
		t.Fatalf("createSessionToken: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieSessionName, Value: token})
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid cookie status = %d, want 200", w.Code)
	}
	if w.Body.String() != "player@example.com" {
		t.Fatalf("subject = %q", w.Body.String())
	}
}
