package cache

import (
	"strings"
	"sync"

	"gridstock/models"
)

// UserCache caches users by case-folded username.
type UserCache struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserCache() *UserCache {
	return &UserCache{users: make(map[string]models.User)}
}

func (c *UserCache) Add(username string, user models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[key(username)] = user
}

func (c *UserCache) Get(username string) (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[key(username)]
	return u, ok
}

func (c *UserCache) Delete(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, key(username))
}

func key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
