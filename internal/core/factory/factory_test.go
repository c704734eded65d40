package factory

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-dcps/internal/core/condition"
	"github.com/dep2p/go-dcps/internal/core/domain"
	"github.com/dep2p/go-dcps/internal/core/ledger"
	"github.com/dep2p/go-dcps/internal/core/metrics"
	"github.com/dep2p/go-dcps/internal/core/qos"
	"github.com/dep2p/go-dcps/internal/core/runtime"
	"github.com/dep2p/go-dcps/internal/core/security"
	secmocks "github.com/dep2p/go-dcps/internal/core/security/mocks"
	"github.com/dep2p/go-dcps/pkg/types"
	"github.com/dep2p/go-dcps/tests/mocks"
)

// fixture 工厂及其协作方
type fixture struct {
	factory    *Factory
	registry   *domain.Registry
	ledger     *ledger.Ledger
	dispatcher *condition.Dispatcher
	builtin    *mocks.MockBuiltin
	runtime    *mocks.MockRuntime
	log        *mocks.CallLog
}

func newFixture(t *testing.T, tweak ...func(*Options)) *fixture {
	t.Helper()

	fx := &fixture{
		ledger:     ledger.New(),
		dispatcher: condition.NewDispatcher(nil, 0),
		log:        &mocks.CallLog{},
	}
	fx.builtin = mocks.NewMockBuiltin(fx.log)
	fx.runtime = mocks.NewMockRuntime(fx.log)
	fx.registry = domain.NewRegistry(domain.Options{
		Binder:     fx.builtin,
		Dispatcher: fx.dispatcher,
		Ledger:     fx.ledger,
		QosPolicy:  qos.DefaultPolicy(),
	})

	opts := Options{
		Registry:  fx.registry,
		Builtin:   fx.builtin,
		Runtime:   fx.runtime,
		QosPolicy: qos.DefaultPolicy(),
	}
	for _, fn := range tweak {
		fn(&opts)
	}

	f, err := New(opts)
	require.NoError(t, err)
	fx.factory = f
	return fx
}

func userData(s string) *types.DomainParticipantQos {
	q := qos.DefaultParticipantQos()
	q.UserData.Value = []byte(s)
	return &q
}

func TestNew_RequiresRegistry(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, types.ErrBadParameter)
}

// ============================================================================
//                              创建与查找
// ============================================================================

func TestCreate_LookupDelete(t *testing.T) {
	fx := newFixture(t)
	f := fx.factory

	p, err := f.Create(3, types.ParticipantQosDefault, nil, types.StatusMaskNone)
	require.NoError(t, err)
	assert.Same(t, p, f.Lookup(3))
	assert.Equal(t, 1, f.LiveParticipants())
	assert.True(t, fx.runtime.Running())

	require.NoError(t, f.Delete(p))
	assert.Nil(t, f.Lookup(3))
	assert.Equal(t, 0, f.LiveParticipants())
	assert.False(t, fx.runtime.Running())
	assert.Equal(t, 0, fx.ledger.Live())
	assert.Equal(t, 0, fx.registry.Len())
}

func TestCreate_DefaultQosSnapshot(t *testing.T) {
	fx := newFixture(t)
	f := fx.factory

	x := userData("x")
	require.NoError(t, f.SetDefaultParticipantQos(x))

	p, err := f.Create(1, types.ParticipantQosDefault, nil, 0)
	require.NoError(t, err)
	assert.True(t, x.Equal(p.Qos()))

	// 之后修改默认值不影响已创建的参与者
	require.NoError(t, f.SetDefaultParticipantQos(userData("y")))
	assert.Equal(t, []byte("x"), p.Qos().UserData.Value)

	// 调用方持有的 QoS 与参与者不共享内存
	x.UserData.Value[0] = 'z'
	assert.Equal(t, []byte("x"), p.UserData())
}

func TestCreate_ExplicitQos(t *testing.T) {
	fx := newFixture(t)
	q := userData("explicit")
	q.EntityFactory.AutoEnableCreatedEntities = false

	p, err := fx.factory.Create(1, q, nil, 0)
	require.NoError(t, err)
	assert.True(t, q.Equal(p.Qos()))

	pub, err := p.CreatePublisher(nil)
	require.NoError(t, err)
	assert.False(t, pub.Enabled(), "participant qos disables child autoenable")
}

func TestCreate_InvalidQosIsNoOp(t *testing.T) {
	fx := newFixture(t)
	oversized := userData(strings.Repeat("u", qos.DefaultMaxUserDataSize+1))

	p, err := fx.factory.Create(1, oversized, nil, 0)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, types.ErrInvalidQos)
	assert.Equal(t, types.RetcodeInconsistentPolicy, types.ReturnCodeOf(err))

	assert.Equal(t, 0, fx.registry.Len())
	assert.Equal(t, 0, fx.ledger.Live())
	assert.False(t, fx.runtime.Running(), "failed first create leaves no runtime behind")
	assert.Equal(t, fx.runtime.Inits(), fx.runtime.Finals())
}

func TestCreate_DuplicateDomain(t *testing.T) {
	fx := newFixture(t)
	f := fx.factory

	p, err := f.Create(2, nil, nil, 0)
	require.NoError(t, err)

	_, err = f.Create(2, nil, nil, 0)
	assert.ErrorIs(t, err, types.ErrOutOfResources)
	assert.Equal(t, 1, f.LiveParticipants())
	assert.True(t, fx.runtime.Running())
	assert.Equal(t, 1, fx.runtime.Inits())

	require.NoError(t, f.Delete(p))
	assert.False(t, fx.runtime.Running())
}

func TestCreate_BadDomain(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.factory.Create(types.MaxDomainID+1, nil, nil, 0)
	assert.ErrorIs(t, err, types.ErrBadParameter)
	assert.False(t, fx.runtime.Running())
}

func TestCreate_RuntimeInitFailure(t *testing.T) {
	fx := newFixture(t)
	fx.runtime.InitFunc = func() error { return errors.New("no memory") }

	_, err := fx.factory.Create(1, nil, nil, 0)
	require.Error(t, err)
	assert.Equal(t, 0, fx.registry.Len())

	// 下一次创建重新尝试初始化
	fx.runtime.InitFunc = nil
	_, err = fx.factory.Create(1, nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, fx.runtime.Inits())
}

func TestCreate_ListenerAndMask(t *testing.T) {
	fx := newFixture(t)

	var hits int
	listener := &types.Listener{OnStatusChanged: func(types.InstanceHandle, types.StatusMask) { hits++ }}
	p, err := fx.factory.Create(1, nil, listener, types.StatusLivelinessChanged)
	require.NoError(t, err)

	assert.Equal(t, types.StatusLivelinessChanged, p.StatusMask())
	_, ok := p.Listener()
	assert.True(t, ok)

	require.NoError(t, p.ChangeStatus(types.StatusLivelinessChanged))
	assert.Equal(t, 1, hits)

	q, err := fx.factory.Create(2, nil, nil, 0)
	require.NoError(t, err)
	_, ok = q.Listener()
	assert.False(t, ok)
}

func TestCreate_ChildDefaultsSnapshot(t *testing.T) {
	fx := newFixture(t)
	p, err := fx.factory.Create(1, nil, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, qos.DefaultTopicQos(), p.DefaultTopicQos())
	assert.Equal(t, qos.DefaultPublisherQos(), p.DefaultPublisherQos())
	assert.Equal(t, qos.DefaultSubscriberQos(), p.DefaultSubscriberQos())
}

func TestCreate_EntityNameAndRelays(t *testing.T) {
	fx := newFixture(t, func(o *Options) {
		o.EntityName = "gateway"
		o.Relays = []string{"10.0.0.1:7400", "10.0.0.2:7400"}
	})
	f := fx.factory

	a, err := f.Create(1, nil, nil, 0)
	require.NoError(t, err)
	b, err := f.Create(2, nil, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, "gateway", a.EntityName())
	assert.Equal(t, []string{"10.0.0.1:7400", "10.0.0.2:7400"}, b.Relays())
	assert.Equal(t, 1, fx.ledger.Live(), "entity name shared through the ledger")

	require.NoError(t, f.Delete(a))
	assert.Equal(t, 1, fx.ledger.Live())
	require.NoError(t, f.Delete(b))
	assert.Equal(t, 0, fx.ledger.Live())
}

// ============================================================================
//                              自动启用
// ============================================================================

func TestAutoEnable(t *testing.T) {
	t.Run("On", func(t *testing.T) {
		fx := newFixture(t)
		p, err := fx.factory.Create(1, nil, nil, 0)
		require.NoError(t, err)
		assert.True(t, p.Enabled())
		assert.Equal(t, 1, fx.log.Count("Bind"))
	})

	t.Run("Off", func(t *testing.T) {
		fx := newFixture(t)
		require.NoError(t, fx.factory.SetQos(&types.DomainParticipantFactoryQos{}))

		p, err := fx.factory.Create(1, nil, nil, 0)
		require.NoError(t, err)
		assert.False(t, p.Enabled())
		assert.Equal(t, 0, fx.log.Count("Bind"))

		require.NoError(t, p.Enable())
		assert.True(t, p.Enabled())
	})

	t.Run("InitialFactoryQos", func(t *testing.T) {
		fx := newFixture(t, func(o *Options) {
			o.FactoryQos = &types.DomainParticipantFactoryQos{}
		})
		p, err := fx.factory.Create(1, nil, nil, 0)
		require.NoError(t, err)
		assert.False(t, p.Enabled())
	})

	t.Run("BindFailureKeepsParticipant", func(t *testing.T) {
		fx := newFixture(t)
		fx.builtin.BindFunc = func(*domain.Participant) error { return errors.New("no route") }

		p, err := fx.factory.Create(1, nil, nil, 0)
		require.NoError(t, err)
		assert.False(t, p.Enabled())
		assert.Same(t, p, fx.factory.Lookup(1))
	})
}

// ============================================================================
//                              删除
// ============================================================================

func TestDelete_PreconditionTrapdoor(t *testing.T) {
	fx := newFixture(t)
	f := fx.factory

	p, err := f.Create(4, nil, nil, 0)
	require.NoError(t, err)
	pub, err := p.CreatePublisher(nil)
	require.NoError(t, err)

	err = f.Delete(p)
	assert.ErrorIs(t, err, types.ErrPreconditionNotMet)
	assert.Equal(t, types.RetcodePreconditionNotMet, types.ReturnCodeOf(err))

	// 参与者完好，已持有的指针仍可用
	assert.False(t, p.IsDeleted())
	assert.True(t, p.Enabled())
	assert.Same(t, p, fx.registry.Get(p.Handle()))
	assert.Equal(t, 1, f.LiveParticipants())

	// 关闭不可撤销：新的按域查找失败，新子实体无法挂接
	assert.Nil(t, f.Lookup(4))
	_, err = p.CreateSubscriber(nil)
	assert.ErrorIs(t, err, types.ErrPreconditionNotMet)

	// 排空子实体后可以再次删除
	require.NoError(t, p.DeletePublisher(pub))
	require.NoError(t, f.Delete(p))
	assert.Equal(t, 0, f.LiveParticipants())
	assert.Equal(t, 1, fx.log.Count("DeleteBuiltinReaders"), "aborted delete touches no collaborator")
}

func TestDelete_TeardownOrder(t *testing.T) {
	waits := &mocks.MockWaitRegistry{}
	fx := newFixture(t, func(o *Options) { o.Waits = waits })
	waits.Log = fx.log
	f := fx.factory

	p, err := f.Create(1, nil, nil, 0)
	require.NoError(t, err)
	cond, err := p.StatusCondition()
	require.NoError(t, err)
	require.NoError(t, p.ChangeStatus(types.StatusDataOnReaders))
	require.True(t, cond.Deferred())

	ws := condition.NewWaitSet()
	require.NoError(t, ws.Attach(cond))

	fx.log.Reset()
	require.NoError(t, f.Delete(p))

	assert.Equal(t, []string{"DeleteBuiltinReaders", "DeleteProtocolBinding", "Retire", "Final"}, fx.log.Calls())
	assert.Equal(t, []types.InstanceHandle{p.Handle()}, waits.RetireCalls)
	assert.True(t, cond.Deleted())
	assert.Equal(t, 0, ws.Conditions(), "deleted condition detached from waitsets")
}

func TestDelete_UndoesRealDispatcher(t *testing.T) {
	fx := newFixture(t)
	p, err := fx.factory.Create(1, nil, nil, 0)
	require.NoError(t, err)
	_, err = p.StatusCondition()
	require.NoError(t, err)
	require.NoError(t, p.ChangeStatus(types.StatusDataOnReaders))
	require.Equal(t, 1, fx.dispatcher.Pending())

	require.NoError(t, fx.factory.Delete(p))
	assert.Equal(t, 0, fx.dispatcher.Pending())
}

func TestDelete_RacingStatusChangeLeavesNoEntry(t *testing.T) {
	fx := newFixture(t)

	for i := 0; i < 200; i++ {
		p, err := fx.factory.Create(1, nil, nil, 0)
		require.NoError(t, err)
		cond, err := p.StatusCondition()
		require.NoError(t, err)

		var g errgroup.Group
		g.Go(func() error {
			// 删除后返回 ErrAlreadyDeleted 属正常
			_ = p.ChangeStatus(types.StatusDataOnReaders)
			return nil
		})
		g.Go(func() error { return fx.factory.Delete(p) })
		require.NoError(t, g.Wait())

		require.True(t, cond.Deleted())
		require.Equal(t, 0, fx.dispatcher.Pending(), "retired condition left in the deferred queue")
	}
}

func TestDelete_SkipsBindingWhenNotEnabled(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.factory.SetQos(&types.DomainParticipantFactoryQos{}))

	p, err := fx.factory.Create(1, nil, nil, 0)
	require.NoError(t, err)
	fx.log.Reset()

	require.NoError(t, fx.factory.Delete(p))
	assert.Equal(t, []string{"DeleteBuiltinReaders", "Final"}, fx.log.Calls())
}

func TestDelete_SkipsBindingWhenInactive(t *testing.T) {
	fx := newFixture(t)
	fx.builtin.ActiveValue = false

	p, err := fx.factory.Create(1, nil, nil, 0)
	require.NoError(t, err)
	fx.log.Reset()

	require.NoError(t, fx.factory.Delete(p))
	assert.Equal(t, 0, fx.log.Count("DeleteProtocolBinding"))
}

func TestDelete_TeardownErrorsDoNotWedge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "dcps")
	fx := newFixture(t, func(o *Options) { o.Metrics = m })
	fx.builtin.DeleteBuiltinReadersFunc = func(*domain.Participant) error { return errors.New("readers busy") }
	fx.builtin.DeleteProtocolBindingFunc = func(*domain.Participant) error { return errors.New("transport gone") }

	p, err := fx.factory.Create(1, userData("ud"), nil, 0)
	require.NoError(t, err)

	require.NoError(t, fx.factory.Delete(p))
	assert.True(t, p.IsDeleted())
	assert.Nil(t, fx.factory.Lookup(1))
	assert.Equal(t, 0, fx.ledger.Live())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TeardownErrors))
}

func TestDelete_InvalidHandles(t *testing.T) {
	fx := newFixture(t)
	f := fx.factory

	assert.ErrorIs(t, f.Delete(nil), types.ErrBadParameter)

	other := newFixture(t)
	foreign, err := other.factory.Create(1, nil, nil, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Delete(foreign), types.ErrBadParameter)

	p, err := f.Create(1, nil, nil, 0)
	require.NoError(t, err)
	require.NoError(t, f.Delete(p))
	err = f.Delete(p)
	assert.ErrorIs(t, err, types.ErrAlreadyDeleted)
	assert.Equal(t, types.RetcodeAlreadyDeleted, types.ReturnCodeOf(err))
}

func TestDelete_ConcurrentSameHandle(t *testing.T) {
	fx := newFixture(t)
	p, err := fx.factory.Create(1, nil, nil, 0)
	require.NoError(t, err)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { results <- fx.factory.Delete(p) }()
	}

	var ok, already int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			ok++
		case errors.Is(err, types.ErrAlreadyDeleted):
			already++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, already)
	assert.Equal(t, 0, fx.factory.LiveParticipants())
	assert.Equal(t, 1, fx.runtime.Finals())
}

func TestDelete_StaleHandleSparesSuccessor(t *testing.T) {
	fx := newFixture(t)
	f := fx.factory

	a, err := f.Create(7, nil, nil, 0)
	require.NoError(t, err)
	require.NoError(t, fx.registry.Resolve(a))
	require.NoError(t, f.Delete(a))

	b, err := f.Create(7, nil, nil, 0)
	require.NoError(t, err)

	// 迟到的删除出现在 a 被删、b 被创建之后
	assert.ErrorIs(t, fx.registry.Close(a), types.ErrAlreadyDeleted)
	assert.ErrorIs(t, f.Delete(a), types.ErrAlreadyDeleted)

	assert.False(t, b.IsClosed())
	assert.Same(t, b, f.Lookup(7))
	pub, err := b.CreatePublisher(nil)
	require.NoError(t, err)
	require.NoError(t, b.DeletePublisher(pub))
	require.NoError(t, f.Delete(b))
}

// ============================================================================
//                              运行时对称性与并发
// ============================================================================

func TestRuntime_Symmetric(t *testing.T) {
	rt := runtime.New()
	fx := newFixture(t, func(o *Options) { o.Runtime = rt })
	f := fx.factory

	var created []*domain.Participant
	for d := types.DomainID(0); d < 5; d++ {
		p, err := f.Create(d, nil, nil, 0)
		require.NoError(t, err)
		created = append(created, p)
	}
	assert.Equal(t, uint64(1), rt.Generation())

	for _, p := range created {
		require.NoError(t, f.Delete(p))
	}
	assert.Equal(t, runtime.PhaseIdle, rt.Phase())

	// 下一次创建与首次创建表现一致：重新初始化
	p, err := f.Create(0, nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rt.Generation())
	require.NoError(t, f.Delete(p))
}

func TestCreate_ConcurrentDistinctDomains(t *testing.T) {
	fx := newFixture(t)
	f := fx.factory

	const n = 32
	handles := make([]*domain.Participant, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			p, err := f.Create(types.DomainID(i), nil, nil, 0)
			handles[i] = p
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, n, f.LiveParticipants())
	assert.Equal(t, 1, fx.runtime.Inits())
	for i, p := range handles {
		assert.Same(t, p, f.Lookup(types.DomainID(i)))
	}

	for _, p := range handles {
		p := p
		g.Go(func() error { return f.Delete(p) })
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 0, f.LiveParticipants())
	assert.Equal(t, 1, fx.runtime.Finals())
}

// ============================================================================
//                              工厂级 QoS
// ============================================================================

func TestDefaultParticipantQos(t *testing.T) {
	fx := newFixture(t)
	f := fx.factory

	assert.True(t, qos.DefaultParticipantQos().Equal(f.DefaultParticipantQos()))

	require.NoError(t, f.SetDefaultParticipantQos(userData("prior")))

	err := f.SetDefaultParticipantQos(userData(strings.Repeat("u", qos.DefaultMaxUserDataSize+1)))
	assert.ErrorIs(t, err, types.ErrInconsistentPolicy)
	assert.Equal(t, types.RetcodeInconsistentPolicy, types.ReturnCodeOf(err))
	assert.Equal(t, []byte("prior"), f.DefaultParticipantQos().UserData.Value)

	// 返回的是快照
	snap := f.DefaultParticipantQos()
	snap.UserData.Value[0] = 'X'
	assert.Equal(t, []byte("prior"), f.DefaultParticipantQos().UserData.Value)

	require.NoError(t, f.SetDefaultParticipantQos(types.ParticipantQosDefault))
	assert.True(t, qos.DefaultParticipantQos().Equal(f.DefaultParticipantQos()))
}

func TestFactoryQos(t *testing.T) {
	fx := newFixture(t)
	f := fx.factory

	assert.True(t, f.Qos().EntityFactory.AutoEnableCreatedEntities)

	err := f.SetQos(nil)
	assert.ErrorIs(t, err, types.ErrBadParameter)
	assert.Equal(t, types.RetcodeBadParameter, types.ReturnCodeOf(err))

	require.NoError(t, f.SetQos(&types.DomainParticipantFactoryQos{}))
	assert.False(t, f.Qos().EntityFactory.AutoEnableCreatedEntities)
}

// ============================================================================
//                              安全准入
// ============================================================================

func TestSecurity_Denied(t *testing.T) {
	ctrl := gomock.NewController(t)
	gk := secmocks.NewMockGatekeeper(ctrl)
	ident := security.Identity{Name: "alice"}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "dcps")
	fx := newFixture(t, func(o *Options) {
		o.Gatekeeper = gk
		o.Identity = ident
		o.Metrics = m
	})

	gk.EXPECT().ValidateLocalPermissions(types.DomainID(1), ident).Return(security.PermissionsHandle(7), nil)
	gk.EXPECT().CheckCreateParticipant(security.PermissionsHandle(7), types.DomainID(1), gomock.Any()).
		Return(security.Decision{}, security.ErrUnknownPermissions)

	p, err := fx.factory.Create(1, nil, nil, 0)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, types.ErrAccessDenied)
	assert.Equal(t, types.RetcodeAccessDenied, types.ReturnCodeOf(err))

	assert.Equal(t, 0, fx.registry.Len())
	assert.Equal(t, 0, fx.ledger.Live())
	assert.False(t, fx.runtime.Running())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdmissionDenied))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParticipantCreate.WithLabelValues("ACCESS_DENIED")))
}

func TestSecurity_ValidateFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	gk := secmocks.NewMockGatekeeper(ctrl)
	fx := newFixture(t, func(o *Options) { o.Gatekeeper = gk })

	gk.EXPECT().ValidateLocalPermissions(gomock.Any(), gomock.Any()).Return(security.PermissionsNil, security.ErrNoIdentity)

	_, err := fx.factory.Create(1, nil, nil, 0)
	assert.ErrorIs(t, err, types.ErrAccessDenied)
	assert.ErrorIs(t, err, security.ErrNoIdentity)
}

func TestSecurity_SecureDomainTokens(t *testing.T) {
	ctrl := gomock.NewController(t)
	gk := secmocks.NewMockGatekeeper(ctrl)
	ident := security.Identity{Name: "alice", Key: []byte("k")}
	fx := newFixture(t, func(o *Options) {
		o.Gatekeeper = gk
		o.Identity = ident
	})

	caps := security.CapAuthentication | security.CapEncryption
	gk.EXPECT().ValidateLocalPermissions(types.DomainID(1), ident).Return(security.PermissionsHandle(9), nil)
	gk.EXPECT().CheckCreateParticipant(security.PermissionsHandle(9), types.DomainID(1), gomock.Any()).
		Return(security.Decision{Secure: true, Capabilities: caps}, nil)
	gk.EXPECT().IdentityToken(ident).Return([]byte("id-token"), nil)
	gk.EXPECT().PermissionsToken(security.PermissionsHandle(9)).Return([]byte("perm-token"), nil)

	p, err := fx.factory.Create(1, nil, nil, 0)
	require.NoError(t, err)

	sec := p.Security()
	assert.True(t, sec.Enabled)
	assert.Equal(t, security.PermissionsHandle(9), sec.Permissions)
	assert.Equal(t, caps, sec.Capabilities)
	assert.Equal(t, []byte("id-token"), sec.IdentityToken)
	assert.Equal(t, []byte("perm-token"), sec.PermissionsToken)
	assert.Equal(t, 2, fx.ledger.Live())

	require.NoError(t, fx.factory.Delete(p))
	assert.Equal(t, 0, fx.ledger.Live())
}

func TestSecurity_TokenFailureIsNonFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	gk := secmocks.NewMockGatekeeper(ctrl)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "dcps")
	fx := newFixture(t, func(o *Options) {
		o.Gatekeeper = gk
		o.Metrics = m
	})

	gk.EXPECT().ValidateLocalPermissions(gomock.Any(), gomock.Any()).Return(security.PermissionsHandle(1), nil)
	gk.EXPECT().CheckCreateParticipant(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(security.Decision{Secure: true}, nil)
	gk.EXPECT().IdentityToken(gomock.Any()).Return(nil, security.ErrTokenTooLarge)
	gk.EXPECT().PermissionsToken(gomock.Any()).Return(make([]byte, security.MaxTokenSize+1), nil)

	p, err := fx.factory.Create(1, nil, nil, 0)
	require.NoError(t, err)

	sec := p.Security()
	assert.True(t, sec.Enabled)
	assert.Nil(t, sec.IdentityToken)
	assert.Nil(t, sec.PermissionsToken, "oversized token treated as a derivation failure")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenFailures.WithLabelValues("identity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenFailures.WithLabelValues("permissions")))

	require.NoError(t, fx.factory.Delete(p))
}

func TestSecurity_PolicyGatekeeper(t *testing.T) {
	policy := security.NewPolicy()
	policy.AddDomain(1, security.DomainRule{Secure: true, Capabilities: security.CapAccessControl})
	_, err := policy.AddParticipant("alice")
	require.NoError(t, err)
	gk, err := security.NewPolicyGatekeeper(policy, 0)
	require.NoError(t, err)

	fx := newFixture(t, func(o *Options) {
		o.Gatekeeper = gk
		o.Identity = security.Identity{Name: "alice", Key: []byte("secret")}
	})

	p, err := fx.factory.Create(1, nil, nil, 0)
	require.NoError(t, err)
	sec := p.Security()
	assert.True(t, sec.Enabled)
	assert.NotEmpty(t, sec.IdentityToken)
	assert.Len(t, sec.PermissionsToken, 32)

	_, err = fx.factory.Create(2, nil, nil, 0)
	assert.ErrorIs(t, err, types.ErrAccessDenied, "domain absent from policy")
	assert.Equal(t, 1, fx.factory.LiveParticipants())
}

// ============================================================================
//                              指标
// ============================================================================

func TestMetrics_CreateDelete(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "dcps")
	fx := newFixture(t, func(o *Options) { o.Metrics = m })
	f := fx.factory

	p, err := f.Create(1, nil, nil, 0)
	require.NoError(t, err)
	_, err = f.Create(1, nil, nil, 0)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParticipantCreate.WithLabelValues(metrics.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParticipantCreate.WithLabelValues("OUT_OF_RESOURCES")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveParticipants))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RuntimeInits))

	require.NoError(t, f.Delete(p))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParticipantDelete.WithLabelValues(metrics.ResultOK)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LiveParticipants))
}
