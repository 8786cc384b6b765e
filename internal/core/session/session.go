package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	flashKey = "_flash"
	ctxKey   = "portal.session"
)

// Session is the request-scoped view of one browser session. It loads the
// stored values on first use and writes them back on Save.
type Session struct {
	store     *Store
	name      string
	r         *http.Request
	w         http.ResponseWriter
	sess      *sessions.Session
	err       error
	destroyed bool
}

func New(store *Store, name string, w http.ResponseWriter, r *http.Request) *Session {
	return &Session{store: store, name: name, r: r, w: w}
}

func (s *Session) start() map[any]any {
	if s.sess == nil {
		s.sess, s.err = s.store.Get(s.r, s.name)
		if s.sess == nil {
			s.sess = sessions.NewSession(s.store, s.name)
			opts := *s.store.Options
			s.sess.Options = &opts
		}
	}
	return s.sess.Values
}

// Err is the error met while loading the session, if any. A failed load
// still yields a usable empty session.
func (s *Session) Err() error {
	s.start()
	return s.err
}

func (s *Session) ID() string {
	s.start()
	return s.sess.ID
}

func splitKey(key string) (string, string, bool) {
	return strings.Cut(key, ".")
}

func child(m map[any]any, top string, create bool) map[string]any {
	if sub, ok := m[top].(map[string]any); ok {
		return sub
	}
	if !create {
		return nil
	}
	sub := map[string]any{}
	m[top] = sub
	return sub
}

func (s *Session) Set(key string, v any) {
	vals := s.start()
	if top, sub, ok := splitKey(key); ok {
		child(vals, top, true)[sub] = v
		return
	}
	vals[key] = v
}

func (s *Session) lookup(key string) (any, bool) {
	vals := s.start()
	if top, sub, ok := splitKey(key); ok {
		m := child(vals, top, false)
		if m == nil {
			return nil, false
		}
		v, found := m[sub]
		return v, found
	}
	v, found := vals[key]
	return v, found
}

func (s *Session) Get(key string, def any) any {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return def
}

func (s *Session) Has(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

func (s *Session) Unset(key string) {
	vals := s.start()
	if top, sub, ok := splitKey(key); ok {
		if m := child(vals, top, false); m != nil {
			delete(m, sub)
		}
		return
	}
	delete(vals, key)
}

// All returns a copy of the top-level values, flash data excluded.
func (s *Session) All() map[string]any {
	vals := s.start()
	out := make(map[string]any, len(vals))
	for k, v := range vals {
		if ks, ok := k.(string); ok && ks != flashKey {
			out[ks] = v
		}
	}
	return out
}

// Flash stores v until the next Pull of key.
func (s *Session) Flash(key string, v any) {
	flash := child(s.start(), flashKey, true)
	if top, sub, ok := splitKey(key); ok {
		m, _ := flash[top].(map[string]any)
		if m == nil {
			m = map[string]any{}
			flash[top] = m
		}
		m[sub] = v
		return
	}
	flash[key] = v
}

// Pull returns the flashed value of key and removes it, or nil. A dotted key
// that misses one level deep is retried as a literal key.
func (s *Session) Pull(key string) any {
	vals := s.start()
	flash := child(vals, flashKey, false)
	if flash == nil {
		return nil
	}
	defer func() {
		if len(flash) == 0 {
			delete(vals, flashKey)
		}
	}()
	if top, sub, ok := splitKey(key); ok {
		if m, isMap := flash[top].(map[string]any); isMap {
			if v, found := m[sub]; found {
				delete(m, sub)
				if len(m) == 0 {
					delete(flash, top)
				}
				return v
			}
		}
	}
	v, found := flash[key]
	if !found {
		return nil
	}
	delete(flash, key)
	return v
}

// Destroy drops every value and the stored record. The cookie is expired on
// Save unless new values are set first.
func (s *Session) Destroy() error {
	vals := s.start()
	for k := range vals {
		delete(vals, k)
	}
	err := s.store.delete(s.r, s.sess.ID)
	s.sess.ID = ""
	s.destroyed = true
	return err
}

// Regenerate keeps the values but moves them to a fresh id on Save.
func (s *Session) Regenerate() error {
	s.start()
	err := s.store.delete(s.r, s.sess.ID)
	s.sess.ID = ""
	return err
}

// Save persists the session and writes its cookie. It must run before the
// response headers are sent. A session never touched is left alone.
func (s *Session) Save() error {
	if s.sess == nil {
		return nil
	}
	if s.destroyed && len(s.sess.Values) == 0 {
		age := s.sess.Options.MaxAge
		s.sess.Options.MaxAge = -1
		err := s.sess.Save(s.r, s.w)
		s.sess.Options.MaxAge = age
		return err
	}
	return s.sess.Save(s.r, s.w)
}

// Middleware attaches a lazy Session to every request.
func Middleware(store *Store, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxKey, New(store, name, c.Writer, c.Request))
		c.Next()
	}
}

func From(c *gin.Context) *Session {
	return c.MustGet(ctxKey).(*Session)
}
