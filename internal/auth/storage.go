package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Storage is the session-scoped key/value store the gate persists its
// marker in. A ttl of zero means the value lives as long as the scope.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Remove(key string)
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStorage is a process-local Storage, used by the CLI and tests.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	return e.value, true
}

func (s *MemoryStorage) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
}

func (s *MemoryStorage) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear drops every entry, like a browser closing the session.
func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]memoryEntry)
}

// CookieStorage stores each key in its own HTTP-only cookie. Values are
// wrapped in an HS256 token so that a client cannot forge them; a token
// that fails verification or has expired reads as absent.
type CookieStorage struct {
	c      *gin.Context
	secret []byte
	secure bool

	// writes made during this request, visible to later reads
	pending map[string]*string
}

// NewCookieStorage binds a CookieStorage to one request.
func NewCookieStorage(c *gin.Context, secret string, secure bool) *CookieStorage {
	return &CookieStorage{
		c:       c,
		secret:  []byte(secret),
		secure:  secure,
		pending: make(map[string]*string),
	}
}

func (s *CookieStorage) Get(key string) (string, bool) {
	if v, ok := s.pending[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	raw, err := s.c.Cookie(key)
	if err != nil || raw == "" {
		return "", false
	}
	claims, err := s.parse(raw)
	if err != nil {
		return "", false
	}
	if k, _ := claims["key"].(string); k != key {
		return "", false
	}
	val, ok := claims["val"].(string)
	return val, ok
}

func (s *CookieStorage) Set(key, value string, ttl time.Duration) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"key": key,
		"val": value,
		"iat": now.Unix(),
	}
	maxAge := 0
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
		maxAge = int(ttl.Seconds())
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return
	}
	s.c.SetCookie(key, token, maxAge, "/", "", s.secure, true)
	s.pending[key] = &value
}

func (s *CookieStorage) Remove(key string) {
	s.c.SetCookie(key, "", -1, "/", "", s.secure, true)
	s.pending[key] = nil
}

func (s *CookieStorage) parse(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
