package authkit

import (
	"context"
	"strconv"
)

// SignUp creates a new email/password account and signs it in. It
// follows the same gate-call-record shape as SignIn, against the
// independent registration counter.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	if st := c.tracker.Check(ctx, rateKind(AttemptRegister)); st.Limited {
		c.metricInc(MetricSignUpRateLimited)
		c.emitAudit(ctx, auditEventSignUpRateLimited, "", false, ErrRegistrationRateLimited, map[string]string{
			"email":        email,
			"wait_minutes": strconv.Itoa(st.WaitMinutes),
		})
		return nil, ErrRegistrationRateLimited
	}

	c.state.transition(StateAuthenticating)

	sess, err := c.provider.CreateAccount(ctx, email, password)
	if err != nil {
		mapped := mapProviderError(err)
		attempts := c.tracker.RecordFailure(ctx, rateKind(AttemptRegister))
		c.state.transition(StateError)
		c.metricInc(MetricSignUpFailure)
		c.emitAudit(ctx, auditEventSignUpFailure, "", false, mapped, map[string]string{
			"email":    email,
			"attempts": strconv.Itoa(attempts),
		})
		return nil, mapped
	}

	c.tracker.RecordSuccess(ctx, rateKind(AttemptRegister))
	result := c.persistSession(ctx, sess)
	c.state.transition(StateAuthenticated)
	c.metricInc(MetricSignUpSuccess)
	c.emitAudit(ctx, auditEventSignUpSuccess, sess.User.SubjectID, true, nil, nil)

	return &result, nil
}
