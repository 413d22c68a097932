package session

import (
	"testing"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_FirstReportMakesReady(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Ready())

	s.SetPrincipal(nil)
	assert.True(t, s.Ready())
	assert.Nil(t, s.Principal())

	s.SetPrincipal(&models.Principal{UID: "u1"})
	p, ready := s.Snapshot()
	assert.True(t, ready)
	require.NotNil(t, p)
	assert.Equal(t, "u1", p.UID)
}

func TestStore_PrincipalIsCopied(t *testing.T) {
	s := NewStore()
	in := &models.Principal{UID: "u1", Email: "a@x.io"}
	s.SetPrincipal(in)
	in.Email = "changed@x.io"

	got := s.Principal()
	assert.Equal(t, "a@x.io", got.Email)
	got.Email = "other@x.io"
	assert.Equal(t, "a@x.io", s.Principal().Email)
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore()

	var seen []string
	record := func(p *models.Principal) {
		if p == nil {
			seen = append(seen, "-")
			return
		}
		seen = append(seen, p.UID)
	}

	unsubscribe := s.Subscribe(record)
	assert.Empty(t, seen, "not ready, nothing delivered yet")

	s.SetPrincipal(&models.Principal{UID: "u1"})
	s.SetPrincipal(nil)
	assert.Equal(t, []string{"u1", "-"}, seen)

	unsubscribe()
	unsubscribe()
	s.SetPrincipal(&models.Principal{UID: "u2"})
	assert.Equal(t, []string{"u1", "-"}, seen)
}

func TestStore_SubscribeWhenReadyDeliversCurrent(t *testing.T) {
	s := NewStore()
	s.SetPrincipal(&models.Principal{UID: "u1"})

	var got *models.Principal
	s.Subscribe(func(p *models.Principal) { got = p })
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UID)
}
