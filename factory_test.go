package dcps

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/dep2p/go-dcps/config"
	"github.com/dep2p/go-dcps/internal/core/security"
	"github.com/dep2p/go-dcps/pkg/types"
)

func startFactory(t *testing.T, opts ...Option) *Factory {
	t.Helper()
	reg := prometheus.NewRegistry()
	opts = append([]Option{WithConfig(config.NewConfig()), WithRegisterer(reg)}, opts...)

	f, err := Start(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestFactory_Lifecycle(t *testing.T) {
	f, err := New(WithConfig(config.NewConfig()), WithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)

	_, err = f.CreateParticipant(0, ParticipantQosDefault, nil, StatusMaskNone)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Nil(t, f.LookupParticipant(0))

	require.NoError(t, f.Start(context.Background()))
	assert.ErrorIs(t, f.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = f.CreateParticipant(0, ParticipantQosDefault, nil, StatusMaskNone)
	assert.ErrorIs(t, err, ErrFactoryClosed)
	assert.ErrorIs(t, f.Start(context.Background()), ErrFactoryClosed)
}

func TestFactory_CreateLookupDelete(t *testing.T) {
	f := startFactory(t)

	p, err := f.CreateParticipant(5, ParticipantQosDefault, nil, StatusMaskNone)
	require.NoError(t, err)
	assert.Same(t, p, f.LookupParticipant(5))
	assert.True(t, p.Enabled())
	assert.True(t, f.RuntimeRunning())
	assert.Equal(t, 1, f.LiveParticipants())

	pub, err := p.CreatePublisher(nil)
	require.NoError(t, err)
	err = f.DeleteParticipant(p)
	assert.Equal(t, types.RetcodePreconditionNotMet, ReturnCodeOf(err))
	assert.Nil(t, f.LookupParticipant(5))

	require.NoError(t, p.DeletePublisher(pub))
	require.NoError(t, f.DeleteParticipant(p))
	assert.False(t, f.RuntimeRunning())
	assert.ErrorIs(t, f.DeleteParticipant(p), ErrAlreadyDeleted)
}

func TestFactory_Options(t *testing.T) {
	f := startFactory(t,
		WithAutoEnable(false),
		WithEntityName("sensor-gw"),
		WithRelays("10.0.0.9:7400"),
	)

	q, err := f.Qos()
	require.NoError(t, err)
	assert.False(t, q.EntityFactory.AutoEnableCreatedEntities)

	p, err := f.CreateParticipant(1, ParticipantQosDefault, nil, StatusMaskNone)
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.Equal(t, "sensor-gw", p.EntityName())
	assert.Equal(t, []string{"10.0.0.9:7400"}, p.Relays())
	require.NoError(t, f.DeleteParticipant(p))

	assert.Equal(t, "sensor-gw", f.Config().Factory.EntityName)
}

func TestFactory_DefaultQos(t *testing.T) {
	f := startFactory(t)

	q := ParticipantQos{UserData: types.UserDataQosPolicy{Value: []byte("hello")}}
	q.EntityFactory.AutoEnableCreatedEntities = true
	require.NoError(t, f.SetDefaultParticipantQos(&q))

	got, err := f.DefaultParticipantQos()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got.UserData.Value)

	p, err := f.CreateParticipant(2, ParticipantQosDefault, nil, StatusMaskNone)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), p.UserData())
	require.NoError(t, f.DeleteParticipant(p))

	require.NoError(t, f.SetDefaultParticipantQos(ParticipantQosDefault))
	got, err = f.DefaultParticipantQos()
	require.NoError(t, err)
	assert.Empty(t, got.UserData.Value)

	assert.ErrorIs(t, f.SetQos(nil), ErrBadParameter)
}

func TestFactory_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f, err := Start(context.Background(), WithConfig(config.NewConfig()), WithRegisterer(reg))
	require.NoError(t, err)
	defer f.Close()

	p, err := f.CreateParticipant(3, ParticipantQosDefault, nil, StatusMaskNone)
	require.NoError(t, err)
	require.NoError(t, f.DeleteParticipant(p))

	n, err := testutil.GatherAndCount(reg, "dcps_participant_create_total", "dcps_participant_delete_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFactory_DecorateGatekeeper(t *testing.T) {
	deny := fx.Decorate(fx.Annotate(
		func(security.Gatekeeper) security.Gatekeeper {
			policy := security.NewPolicy()
			gk, _ := security.NewPolicyGatekeeper(policy, 0)
			return gk
		},
		fx.ParamTags(`name:"gatekeeper"`),
		fx.ResultTags(`name:"gatekeeper"`),
	))
	f := startFactory(t, WithFxOption(deny))

	_, err := f.CreateParticipant(1, ParticipantQosDefault, nil, StatusMaskNone)
	assert.ErrorIs(t, err, ErrAccessDenied, "no identity configured")
	assert.Equal(t, 0, f.LiveParticipants())
}

func TestNew_BadOptions(t *testing.T) {
	_, err := New(WithConfig(nil))
	assert.ErrorIs(t, err, ErrBadParameter)

	cfg := config.NewConfig()
	cfg.Log.Level = "loud"
	_, err = New(WithConfig(cfg))
	assert.Error(t, err)

	_, err = New(WithConfigFile("testdata/missing.toml"))
	assert.Error(t, err)
}

func TestInstance(t *testing.T) {
	a, err := Instance()
	require.NoError(t, err)
	b, err := Instance()
	require.NoError(t, err)
	assert.Same(t, a, b)

	p, err := a.CreateParticipant(MaxDomainID, ParticipantQosDefault, nil, StatusMaskNone)
	require.NoError(t, err)
	require.NoError(t, a.DeleteParticipant(p))
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)
}
