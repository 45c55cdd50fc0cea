package bridge

import "github.com/jrsteele09/go-mfe-bridge/hostdata"

// GetUserID returns the host user id, or "" when none was shared.
func (c *Consumer) GetUserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.UserID
}

// GetUserProfile returns a copy of the user profile, or nil.
func (c *Consumer) GetUserProfile() *hostdata.UserProfile {
	return c.GetState().UserProfile
}

func (c *Consumer) GetClaimType() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.ClaimType
}

// GetLanguage returns the shared language, defaulting to "en".
func (c *Consumer) GetLanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.GetLanguage()
}

func (c *Consumer) GetClaimData() any {
	return c.GetState().ClaimData
}

func (c *Consumer) GetPageContext() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.PageContext
}

func (c *Consumer) GetTimestamp() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Timestamp
}

func (c *Consumer) GetSessionData() *hostdata.SessionData {
	return c.GetState().SessionData
}

// IsLoggedIn is true only when the host set sessionData.isLoggedIn to true.
func (c *Consumer) IsLoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.IsLoggedIn()
}

// GetAPICredentials returns a copy of the credential bundle in the state, or nil.
func (c *Consumer) GetAPICredentials() *hostdata.APICredentials {
	return c.GetState().APICredentials
}
