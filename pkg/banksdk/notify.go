package banksdk

// notifyReauth tells the configured callback that automatic credential
// recovery failed. A panicking callback is contained here; it must never
// disturb the caller's control flow.
func (c *Client) notifyReauth(reason ReauthReason) {
	c.log.Warn("re-authentication required", "reason", reason)

	cb := c.cfg.OnReauthRequired
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("reauth callback panicked", "reason", reason, "panic", r)
		}
	}()
	cb(reason)
}

// notifyTANStatus reports TAN approval progress to the optional callback.
func (c *Client) notifyTANStatus(status TANStatus, info TANStatusInfo) {
	cb := c.cfg.OnTANStatus
	if cb == nil {
		c.log.Debug("tan status", "status", status, "kind", info.Kind)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("tan status callback panicked", "status", status, "panic", r)
		}
	}()
	cb(status, info)
}
