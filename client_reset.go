package authkit

import "context"

// SendPasswordReset asks the provider to email a password-reset link.
// Reset requests are not locally rate-limited; the provider applies
// its own throttle, surfaced as ErrProviderRateLimited.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	if err := c.provider.SendPasswordReset(ctx, email); err != nil {
		mapped := mapProviderError(err)
		c.emitAudit(ctx, auditEventPasswordResetRequest, "", false, mapped, map[string]string{
			"email": email,
		})
		return mapped
	}

	c.metricInc(MetricPasswordResetRequest)
	c.emitAudit(ctx, auditEventPasswordResetRequest, "", true, nil, map[string]string{
		"email": email,
	})
	return nil
}
