package app

import "sync"

// Credentials holds the bearer token for outbound requests. One value is
// shared by the auth service (writer) and the Event Service client (reader).
type Credentials struct {
	mu       sync.RWMutex
	token    string
	vendorID string
}

// NewCredentials returns signed-out credentials.
func NewCredentials() *Credentials {
	return &Credentials{}
}

// Set installs a token for vendorID.
func (c *Credentials) Set(token, vendorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.vendorID = vendorID
}

// Clear signs out.
func (c *Credentials) Clear() {
	c.Set("", "")
}

// Token returns the current bearer token, or "" when signed out.
func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// VendorID returns the signed-in vendor, or "".
func (c *Credentials) VendorID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vendorID
}
