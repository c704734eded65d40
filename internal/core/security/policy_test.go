package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dcps/pkg/types"
)

func TestPolicy_VersionBumps(t *testing.T) {
	p := NewPolicy()
	assert.Equal(t, uint64(0), p.Version())

	p.AddDomain(1, DomainRule{Secure: true})
	assert.Equal(t, uint64(1), p.Version())

	c, err := p.AddParticipant("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), p.Version())

	// 重复添加复用 cookie，不产生修改
	again, err := p.AddParticipant("alice")
	require.NoError(t, err)
	assert.Equal(t, c, again)
	assert.Equal(t, uint64(2), p.Version())
}

func TestPolicy_BatchUpdate(t *testing.T) {
	p := NewPolicy()
	require.NoError(t, p.UpdateStart())
	assert.ErrorIs(t, p.UpdateStart(), ErrUpdateInProgress)

	p.AddDomain(1, DomainRule{})
	p.AddDomain(2, DomainRule{})
	assert.Equal(t, uint64(0), p.Version())

	p.UpdateDone()
	assert.Equal(t, uint64(1), p.Version())

	// 空批量不递增
	require.NoError(t, p.UpdateStart())
	p.UpdateDone()
	assert.Equal(t, uint64(1), p.Version())
}

func TestPolicy_Partitions(t *testing.T) {
	p := NewPolicy()
	_, ok := p.Partitions("nobody")
	assert.False(t, ok)

	c, err := p.AddParticipant("alice")
	require.NoError(t, err)
	require.NoError(t, p.AddPartition(c, "zeta", Perms{Read: true}))
	require.NoError(t, p.AddPartition(c, "alpha", Perms{Write: true}))

	parts, ok := p.Partitions("alice")
	require.True(t, ok)
	require.Len(t, parts, 2)
	assert.Equal(t, "alpha", parts[0].Name)
	assert.True(t, parts[0].Perms.Write)
	assert.Equal(t, "zeta", parts[1].Name)

	assert.ErrorIs(t, p.AddPartition(Cookie(999), "x", Perms{}), ErrUnknownCookie)
}

func TestPolicy_AddParticipantEmpty(t *testing.T) {
	_, err := NewPolicy().AddParticipant("")
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestPolicy_Flush(t *testing.T) {
	p := NewPolicy()
	p.AddDomain(types.DomainID(4), DomainRule{Secure: true})
	_, err := p.AddParticipant("alice")
	require.NoError(t, err)

	p.Flush()

	_, ok := p.Domain(4)
	assert.False(t, ok)
	_, ok = p.Partitions("alice")
	assert.False(t, ok)
}

func TestParseCapabilities(t *testing.T) {
	caps, err := ParseCapabilities([]string{"authentication", "encryption"})
	require.NoError(t, err)
	assert.True(t, caps.Has(CapAuthentication|CapEncryption))
	assert.False(t, caps.Has(CapAccessControl))

	_, err = ParseCapabilities([]string{"nope"})
	assert.Error(t, err)
}
