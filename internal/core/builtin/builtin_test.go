package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dcps/internal/core/domain"
	"github.com/dep2p/go-dcps/pkg/types"
)

func newParticipant(t *testing.T, s *Service, id types.DomainID) *domain.Participant {
	t.Helper()
	r := domain.NewRegistry(domain.Options{Binder: s})
	l, err := r.Create(id)
	require.NoError(t, err)
	l.Release()
	return l.Participant()
}

func TestService_BindActive(t *testing.T) {
	s := NewService(true)
	p := newParticipant(t, s, 1)

	require.NoError(t, p.Enable())
	assert.True(t, s.HasReaders(p.Handle()))
	assert.True(t, s.HasBinding(p.Handle()))
	assert.Equal(t, []string{TopicParticipant, TopicPublication, TopicSubscription}, s.Readers(p.Handle()))

	// 重复绑定无操作
	require.NoError(t, s.Bind(p))
	assert.Len(t, s.Readers(p.Handle()), 3)
}

func TestService_BindInactive(t *testing.T) {
	s := NewService(false)
	p := newParticipant(t, s, 1)

	require.NoError(t, p.Enable())
	assert.False(t, s.Active())
	assert.True(t, s.HasReaders(p.Handle()))
	assert.False(t, s.HasBinding(p.Handle()))
	assert.False(t, s.NoteDiscovered(p.Handle(), types.GUIDPrefix{1}))
}

func TestService_DeleteCascades(t *testing.T) {
	s := NewService(true)
	p := newParticipant(t, s, 2)
	require.NoError(t, p.Enable())

	assert.True(t, s.NoteDiscovered(p.Handle(), types.GUIDPrefix{1}))
	assert.True(t, s.NoteDiscovered(p.Handle(), types.GUIDPrefix{2}))
	assert.Equal(t, 2, s.Discovered(p.Handle()))

	require.NoError(t, s.DeleteBuiltinReaders(p))
	assert.False(t, s.HasReaders(p.Handle()))

	require.NoError(t, s.DeleteProtocolBinding(p))
	assert.False(t, s.HasBinding(p.Handle()))
	assert.Equal(t, 0, s.Discovered(p.Handle()))

	// 幂等
	assert.NoError(t, s.DeleteBuiltinReaders(p))
	assert.NoError(t, s.DeleteProtocolBinding(p))
}
