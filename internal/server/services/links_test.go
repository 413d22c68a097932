package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyEmail(t *testing.T) {
	f := newIdentityFixture(t, nil)
	ctx := context.Background()
	sess, err := f.svc.Register(ctx, "ann@example.com", "secret1", "")
	require.NoError(t, err)

	token := tokenFromLink(t, f.out.last().Body)
	require.NoError(t, f.svc.VerifyEmail(ctx, token))

	u, err := f.svc.GetCurrentUser(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, token), common.ErrInvalidActionCode)
}

func TestSendVerificationEmail(t *testing.T) {
	f := newIdentityFixture(t, nil)
	ctx := context.Background()
	sess, err := f.svc.Register(ctx, "ann@example.com", "secret1", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.SendVerificationEmail(ctx, sess.User.ID))
	assert.Len(t, f.out.mail, 2)

	require.NoError(t, f.svc.VerifyEmail(ctx, tokenFromLink(t, f.out.last().Body)))
	require.NoError(t, f.svc.SendVerificationEmail(ctx, sess.User.ID))
	assert.Len(t, f.out.mail, 2, "verified accounts get no mail")
}

func TestPasswordReset(t *testing.T) {
	f := newIdentityFixture(t, nil)
	ctx := context.Background()
	sess, err := f.svc.Register(ctx, "ann@example.com", "secret1", "")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.SendPasswordReset(ctx, "nobody@example.com"), common.ErrUserNotFound)

	require.NoError(t, f.svc.SendPasswordReset(ctx, "ann@example.com"))
	msg := f.out.last()
	assert.Contains(t, msg.Body, PathResetPassword)
	token := tokenFromLink(t, msg.Body)

	// a weak password does not burn the link
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, token, "1"), common.ErrWeakPassword)
	require.NoError(t, f.svc.ResetPassword(ctx, token, "newsecret"))
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, token, "newsecret2"), common.ErrInvalidActionCode)

	_, err = f.svc.SignIn(ctx, "ann@example.com", "newsecret")
	assert.NoError(t, err)

	// sessions from before the reset are revoked
	_, err = f.svc.RefreshToken(ctx, sess.Tokens.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGuardianInvite(t *testing.T) {
	f := newIdentityFixture(t, nil)
	ctx := context.Background()
	sess, err := f.svc.Register(ctx, "ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	require.NoError(t, f.svc.SendGuardianInvite(ctx, sess.User.ID, "g1", "bob@example.com"))
	msg := f.out.last()
	assert.Equal(t, "bob@example.com", msg.To)
	assert.Contains(t, msg.Body, "Ann invited you")

	owner, guardian, err := f.svc.AcceptGuardianInvite(ctx, tokenFromLink(t, msg.Body))
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, owner)
	assert.Equal(t, "g1", guardian)

	// an invite token cannot verify an email
	require.NoError(t, f.svc.SendGuardianInvite(ctx, sess.User.ID, "g2", "carl@example.com"))
	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, tokenFromLink(t, f.out.last().Body)), common.ErrInvalidActionCode)
}
