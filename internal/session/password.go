package session

import "sync"

// PasswordCache remembers the password used to join each private room for
// the life of the process, so reconnects don't have to prompt again. The
// password is only ever sent with a join.
type PasswordCache struct {
	mu  sync.Mutex
	pws map[int64]string
}

func NewPasswordCache() *PasswordCache {
	return &PasswordCache{pws: make(map[int64]string)}
}

func (c *PasswordCache) Get(roomID int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pws[roomID]
}

func (c *PasswordCache) Set(roomID int64, password string) {
	if password == "" {
		return
	}
	c.mu.Lock()
	c.pws[roomID] = password
	c.mu.Unlock()
}

func (c *PasswordCache) Forget(roomID int64) {
	c.mu.Lock()
	delete(c.pws, roomID)
	c.mu.Unlock()
}
