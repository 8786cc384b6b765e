package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"job-portal/internal/core/session"
	"job-portal/internal/domain"
)

func serve(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitPerIPKeepsClientsApart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	denied := 0
	r := gin.New()
	r.POST("/login", RateLimitPerIP(0.001, 2, func(c *gin.Context, _ int, _ string) {
		denied++
		c.AbortWithStatus(http.StatusTooManyRequests)
	}), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		if code := serve(r, "10.0.0.1"); code != http.StatusNoContent {
			t.Fatalf("request %d: %d", i, code)
		}
	}
	if code := serve(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("burst not enforced: %d", code)
	}
	if code := serve(r, "10.0.0.2"); code != http.StatusNoContent {
		t.Fatalf("other client limited: %d", code)
	}
	if denied != 1 {
		t.Fatalf("denied = %d", denied)
	}
}

func TestAccessLogMasksSecrets(t *testing.T) {
	got := mask(map[string][]string{"password": {"p"}, "email": {"e"}, "csrf_token": {"t"}})
	if got["password"][0] == "p" || got["csrf_token"][0] == "t" || got["email"][0] != "e" {
		t.Fatalf("mask = %v", got)
	}
}

func TestWantsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if WantsJSON(c) {
		t.Fatal("plain request")
	}
	c.Request.Header.Set("Accept", "application/json")
	if !WantsJSON(c) {
		t.Fatal("json request")
	}
}

func TestRecoveryAnswersJSONInBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.CustomRecovery(Recovery))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if w.Code != http.StatusOK || body["success"] != false || body["error"] != "An unexpected error occurred" {
		t.Fatalf("%d %v", w.Code, body)
	}

	req = httptest.NewRequest(http.MethodGet, "/boom", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("page panic: %d", w.Code)
	}
}

func TestSessionUserRefusesUnknownRole(t *testing.T) {
	store := session.NewStore(session.NewMemoryBackend(), []byte("k"))
	s := session.New(store, "s", httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	s.Set(UserKey, domain.SessionUser{ID: 1, Email: "x@test.com", Role: "ROOT"})
	if _, ok := SessionUser(s); ok {
		t.Fatal("unknown role accepted")
	}
	s.Set(UserKey, domain.SessionUser{ID: 1, Email: "x@test.com", Role: domain.RoleStudent})
	if u, ok := SessionUser(s); !ok || u.Role != domain.RoleStudent {
		t.Fatalf("student refused: %v %v", u, ok)
	}
}
