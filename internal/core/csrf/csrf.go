package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"github.com/gin-gonic/gin"

	"job-portal/internal/core/session"
)

const (
	SessionKey = "csrf_token"
	FormField  = "csrf_token"
	Header     = "X-CSRF-Token"

	// Message is the only feedback a failed check ever gives.
	Message = "Invalid CSRF token"
)

// GenerateToken returns the session token, creating it on first use.
func GenerateToken(s *session.Session) string {
	if tok, ok := s.Get(SessionKey, "").(string); ok && tok != "" {
		return tok
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	tok := hex.EncodeToString(b)
	s.Set(SessionKey, tok)
	return tok
}

func VerifyToken(s *session.Session, candidate string) bool {
	tok, _ := s.Get(SessionKey, "").(string)
	if tok == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(tok), []byte(candidate)) == 1
}

func InvalidateToken(s *session.Session) { s.Unset(SessionKey) }

// FromRequest reads the submitted token from the form or the header.
func FromRequest(c *gin.Context) string {
	if v := c.PostForm(FormField); v != "" {
		return v
	}
	return c.GetHeader(Header)
}
