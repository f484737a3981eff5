package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) GateConfig {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	return GateConfig{
		Passcode:    "202512",
		Credentials: StaticCredentials{Username: "admin", Hash: hash},
		TTL:         time.Hour,
	}
}

func TestLogin(t *testing.T) {
	cfg := testConfig(t)

	t.Run("correct passcode", func(t *testing.T) {
		storage := NewMemoryStorage()
		g := NewGate(cfg, storage)
		assert.False(t, g.Authenticated())

		assert.True(t, g.Login("202512"))
		assert.True(t, g.Authenticated())
		v, ok := storage.Get(SessionKey)
		assert.True(t, ok)
		assert.Equal(t, sessionMarker, v)
	})

	t.Run("wrong passcode leaves state", func(t *testing.T) {
		storage := NewMemoryStorage()
		g := NewGate(cfg, storage)
		for _, p := range []string{"", "202513", "2025120", " 202512", "20251"} {
			assert.False(t, g.Login(p), "passcode %q", p)
		}
		assert.False(t, g.Authenticated())
		_, ok := storage.Get(SessionKey)
		assert.False(t, ok)
	})

	t.Run("empty configured passcode never matches", func(t *testing.T) {
		g := NewGate(GateConfig{}, NewMemoryStorage())
		assert.False(t, g.Login(""))
	})

	t.Run("no lockout", func(t *testing.T) {
		g := NewGate(cfg, NewMemoryStorage())
		for i := 0; i < 20; i++ {
			g.Login("nope")
		}
		assert.True(t, g.Login("202512"))
	})
}

func TestLoginWithCredentials(t *testing.T) {
	cfg := testConfig(t)
	storage := NewMemoryStorage()
	g := NewGate(cfg, storage)

	assert.False(t, g.LoginWithCredentials("admin", "wrong"))
	assert.False(t, g.LoginWithCredentials("other", "s3cret"))
	assert.False(t, g.Authenticated())

	assert.True(t, g.LoginWithCredentials("admin", "s3cret"))
	assert.True(t, g.Authenticated())

	// both paths share one marker
	restored := NewGate(cfg, storage)
	assert.True(t, restored.Authenticated())
}

func TestLogout(t *testing.T) {
	cfg := testConfig(t)
	storage := NewMemoryStorage()
	g := NewGate(cfg, storage)
	require.True(t, g.Login("202512"))

	g.Logout()
	assert.False(t, g.Authenticated())
	_, ok := storage.Get(SessionKey)
	assert.False(t, ok)
	assert.False(t, NewGate(cfg, storage).Authenticated())

	assert.NotPanics(t, g.Logout)
	assert.False(t, g.Authenticated())
}

func TestGateRestoresFromStorage(t *testing.T) {
	cfg := testConfig(t)
	storage := NewMemoryStorage()
	require.True(t, NewGate(cfg, storage).Login("202512"))

	assert.True(t, NewGate(cfg, storage).Authenticated())

	storage.Set(SessionKey, "something-else", 0)
	assert.False(t, NewGate(cfg, storage).Authenticated())
}

func TestSessionExpiry(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	storage := NewMemoryStorage()
	storage.now = func() time.Time { return now }

	g := NewGate(cfg, storage)
	require.True(t, g.Login("202512"))

	now = now.Add(59 * time.Minute)
	assert.True(t, g.Authenticated())

	now = now.Add(2 * time.Minute)
	assert.False(t, g.Authenticated())
	assert.False(t, NewGate(cfg, storage).Authenticated())
}

func TestStorageClearEndsSession(t *testing.T) {
	cfg := testConfig(t)
	storage := NewMemoryStorage()
	g := NewGate(cfg, storage)
	require.True(t, g.Login("202512"))

	storage.Clear()
	assert.False(t, g.Authenticated())
}

func TestChainCredentials(t *testing.T) {
	chain := ChainCredentials{nil, StaticCredentials{Username: "a", Hash: "h1"}, StaticCredentials{Username: "b", Hash: "h2"}}

	hash, ok := chain.PasswordHash("b")
	assert.True(t, ok)
	assert.Equal(t, "h2", hash)

	_, ok = chain.PasswordHash("c")
	assert.False(t, ok)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}
