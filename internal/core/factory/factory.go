package factory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/dep2p/go-dcps/internal/core/domain"
	"github.com/dep2p/go-dcps/internal/core/ledger"
	"github.com/dep2p/go-dcps/internal/core/metrics"
	"github.com/dep2p/go-dcps/internal/core/qos"
	"github.com/dep2p/go-dcps/internal/core/runtime"
	"github.com/dep2p/go-dcps/internal/core/security"
	"github.com/dep2p/go-dcps/pkg/lib/log"
	"github.com/dep2p/go-dcps/pkg/types"
)

var logger = log.Logger("core/factory")

// Options 工厂选项
type Options struct {
	// Registry 参与者注册表（必需）
	Registry *domain.Registry

	// Gatekeeper 安全准入，nil 时为非安全模式
	Gatekeeper security.Gatekeeper

	// Identity 本地身份
	Identity security.Identity

	// Builtin 内置实体销毁钩子，可为 nil
	Builtin Builtin

	// Waits 延迟通知注册表，nil 时使用注册表的 Dispatcher
	Waits WaitRegistry

	// Runtime 进程级运行时，nil 时新建
	Runtime Runtime

	// Metrics 指标，可为 nil
	Metrics *metrics.Metrics

	// Clock 时钟，nil 时使用系统时钟
	Clock clock.Clock

	// QosPolicy 参与者 QoS 校验策略
	QosPolicy qos.Policy

	// FactoryQos 工厂 QoS 初值，nil 时使用内置默认值（自动启用）
	FactoryQos *types.DomainParticipantFactoryQos

	// EntityName 进程级实体名，空表示不设置
	EntityName string

	// Relays 转发中继地址，非空时每个参与者分配一份
	Relays []string
}

// ============================================================================
//                              Factory 参与者工厂
// ============================================================================

// Factory 参与者工厂
type Factory struct {
	registry   *domain.Registry
	ledger     *ledger.Ledger
	gatekeeper security.Gatekeeper
	identity   security.Identity
	builtin    Builtin
	waits      WaitRegistry
	runtime    Runtime
	metrics    *metrics.Metrics
	clock      clock.Clock
	policy     qos.Policy
	entityName string
	relays     []string

	// mu 保护以下字段
	mu sync.Mutex

	// users 进行中的创建 + 存活参与者，决定运行时是否初始化
	users int
	live  int

	defaultQos    types.DomainParticipantQos
	factoryQos    types.DomainParticipantFactoryQos
	topicQos      types.TopicQos
	publisherQos  types.PublisherQos
	subscriberQos types.SubscriberQos
}

// New 创建工厂
func New(opts Options) (*Factory, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required: %w", types.ErrBadParameter)
	}

	f := &Factory{
		registry:      opts.Registry,
		ledger:        opts.Registry.Ledger(),
		gatekeeper:    opts.Gatekeeper,
		identity:      opts.Identity,
		builtin:       opts.Builtin,
		waits:         opts.Waits,
		runtime:       opts.Runtime,
		metrics:       opts.Metrics,
		clock:         opts.Clock,
		policy:        opts.QosPolicy,
		entityName:    opts.EntityName,
		relays:        append([]string(nil), opts.Relays...),
		defaultQos:    qos.DefaultParticipantQos(),
		factoryQos:    qos.DefaultFactoryQos(),
		topicQos:      qos.DefaultTopicQos(),
		publisherQos:  qos.DefaultPublisherQos(),
		subscriberQos: qos.DefaultSubscriberQos(),
	}
	if opts.FactoryQos != nil {
		f.factoryQos = *opts.FactoryQos
	}
	if f.gatekeeper == nil {
		f.gatekeeper = security.Disabled{}
	}
	if f.builtin == nil {
		f.builtin = noBuiltin{}
	}
	if f.waits == nil {
		if d := opts.Registry.Dispatcher(); d != nil {
			f.waits = d
		} else {
			f.waits = noWaits{}
		}
	}
	if f.runtime == nil {
		f.runtime = runtime.New()
	}
	if f.clock == nil {
		f.clock = clock.New()
	}
	return f, nil
}

// Registry 返回参与者注册表
func (f *Factory) Registry() *domain.Registry {
	return f.registry
}

// ============================================================================
//                              运行时引用
// ============================================================================

// acquireRuntime 增加运行时引用，从零开始时初始化
func (f *Factory) acquireRuntime() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.users == 0 {
		if err := f.runtime.Init(); err != nil {
			return fmt.Errorf("runtime init: %w", err)
		}
		f.metrics.IncRuntimeInit()
	}
	f.users++
	return nil
}

// releaseRuntimeLocked 减少运行时引用，归零时终结；调用方持有 f.mu
func (f *Factory) releaseRuntimeLocked() error {
	f.users--
	if f.users > 0 {
		return nil
	}
	if err := f.runtime.Final(); err != nil {
		return fmt.Errorf("runtime final: %w", err)
	}
	return nil
}

func (f *Factory) releaseRuntime() {
	f.mu.Lock()
	err := f.releaseRuntimeLocked()
	f.mu.Unlock()
	if err != nil {
		logger.Warn("运行时终结失败", "error", err)
	}
}

// ============================================================================
//                              创建
// ============================================================================

// Create 在指定域创建参与者
//
// q 为 types.ParticipantQosDefault 时使用调用时刻的工厂默认 QoS。
// listener 按值拷贝，nil 表示不设置。失败时不留下任何状态。
func (f *Factory) Create(id types.DomainID, q *types.DomainParticipantQos, listener *types.Listener, mask types.StatusMask) (*domain.Participant, error) {
	p, err := f.create(id, q, listener, mask)
	f.metrics.ObserveCreate(resultLabel(err))
	return p, err
}

func (f *Factory) create(id types.DomainID, q *types.DomainParticipantQos, listener *types.Listener, mask types.StatusMask) (*domain.Participant, error) {
	start := f.clock.Now()

	if err := f.acquireRuntime(); err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			f.releaseRuntime()
		}
	}()

	f.mu.Lock()
	resolved, err := f.policy.Resolve(q, f.defaultQos)
	topicQos := f.topicQos.Clone()
	publisherQos := f.publisherQos.Clone()
	subscriberQos := f.subscriberQos.Clone()
	f.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("create participant on %s: %w", id, err)
	}

	perm, decision, err := f.admit(id, &resolved)
	if err != nil {
		return nil, err
	}

	locked, err := f.registry.Create(id)
	if err != nil {
		return nil, fmt.Errorf("create participant on %s: %w", id, err)
	}
	defer locked.Abort()
	p := locked.Participant()

	contents := domain.Contents{
		Qos:           resolved,
		Listener:      listener,
		Mask:          mask,
		TopicQos:      topicQos,
		PublisherQos:  publisherQos,
		SubscriberQos: subscriberQos,
		UserData:      f.ledger.Intern(resolved.UserData.Value),
		EntityName:    f.ledger.InternString(f.entityName),
		Relays:        f.relays,
	}
	if decision.Secure {
		contents.Security = f.secure(id, perm, decision)
	}
	locked.Populate(contents)

	f.mu.Lock()
	f.live++
	live := f.live
	f.mu.Unlock()
	f.metrics.SetLive(live)
	committed = true

	locked.Release()

	f.mu.Lock()
	autoEnable := f.factoryQos.EntityFactory.AutoEnableCreatedEntities
	f.mu.Unlock()
	if autoEnable {
		if err := p.Enable(); err != nil {
			logger.Warn("自动启用参与者失败", "domain", id, "handle", p.Handle(), "error", err)
		}
	}

	logger.Info("参与者已创建",
		"domain", id,
		"handle", p.Handle(),
		"guid", p.GUIDPrefix(),
		"secure", decision.Secure,
		"enabled", p.Enabled(),
		"live", live,
		"elapsed", f.clock.Since(start))
	return p, nil
}

// admit 执行安全准入
func (f *Factory) admit(id types.DomainID, q *types.DomainParticipantQos) (security.PermissionsHandle, security.Decision, error) {
	perm, err := f.gatekeeper.ValidateLocalPermissions(id, f.identity)
	if err != nil {
		f.metrics.IncAdmissionDenied()
		logger.Warn("本地权限校验失败", "domain", id, "identity", f.identity.Name, "error", err)
		return security.PermissionsNil, security.Decision{}, denied(id, err)
	}

	decision, err := f.gatekeeper.CheckCreateParticipant(perm, id, q)
	if err != nil {
		f.metrics.IncAdmissionDenied()
		logger.Warn("安全准入拒绝", "domain", id, "identity", f.identity.Name, "error", err)
		return security.PermissionsNil, security.Decision{}, denied(id, err)
	}
	return perm, decision, nil
}

func denied(id types.DomainID, err error) error {
	if errors.Is(err, types.ErrAccessDenied) {
		return fmt.Errorf("create participant on %s: %w", id, err)
	}
	return fmt.Errorf("create participant on %s: %w: %w", id, types.ErrAccessDenied, err)
}

// secure 派生安全域字段，令牌派生失败只告警
func (f *Factory) secure(id types.DomainID, perm security.PermissionsHandle, decision security.Decision) domain.Security {
	sec := domain.Security{
		Enabled:      true,
		Permissions:  perm,
		Capabilities: decision.Capabilities,
	}

	if tok, err := f.token(f.gatekeeper.IdentityToken(f.identity)); err != nil {
		f.metrics.IncTokenFailure("identity")
		logger.Warn("身份令牌派生失败", "domain", id, "identity", f.identity.Name, "error", err)
	} else {
		sec.IdentityToken = f.ledger.Intern(tok)
	}

	if tok, err := f.token(f.gatekeeper.PermissionsToken(perm)); err != nil {
		f.metrics.IncTokenFailure("permissions")
		logger.Warn("权限令牌派生失败", "domain", id, "identity", f.identity.Name, "error", err)
	} else {
		sec.PermissionsToken = f.ledger.Intern(tok)
	}
	return sec
}

func (f *Factory) token(tok []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if len(tok) > security.MaxTokenSize {
		return nil, fmt.Errorf("%w: %d bytes", security.ErrTokenTooLarge, len(tok))
	}
	return tok, nil
}

// ============================================================================
//                              删除
// ============================================================================

// Delete 删除参与者
//
// 仍有子实体时返回 ErrPreconditionNotMet，参与者保持完好，但所在域保持
// 关闭。可能无限期阻塞在参与者锁上。协作方的销毁错误被记录，不阻止删除。
func (f *Factory) Delete(p *domain.Participant) error {
	err := f.delete(p)
	f.metrics.ObserveDelete(resultLabel(err))
	return err
}

func (f *Factory) delete(p *domain.Participant) error {
	start := f.clock.Now()
	if err := f.registry.Close(p); err != nil {
		return err
	}
	id, h := p.Domain(), p.Handle()

	locked, err := f.registry.Acquire(p)
	if err != nil {
		return err
	}

	if locked.HasChildren() {
		locked.Release()
		logger.Debug("参与者仍有子实体，删除中止", "domain", id, "handle", h)
		return fmt.Errorf("delete participant %d: %w: participant still owns publishers or subscribers", h, types.ErrPreconditionNotMet)
	}

	var errs error
	errs = multierr.Append(errs, f.builtin.DeleteBuiltinReaders(p))
	if locked.Enabled() && f.builtin.Active() {
		errs = multierr.Append(errs, f.builtin.DeleteProtocolBinding(p))
	}

	if cond := locked.TakeStatusCondition(); cond != nil {
		f.waits.Retire(h, cond)
	}

	sec := locked.TakeSecurity()
	f.ledger.Release(sec.IdentityToken)
	f.ledger.Release(sec.PermissionsToken)

	f.ledger.Release(locked.TakeUserData())
	f.ledger.Release(locked.TakeEntityName())

	f.registry.Detach(p)

	if relays := locked.TakeRelays(); len(relays) > 0 {
		logger.Debug("中继表已释放", "domain", id, "relays", len(relays))
	}

	f.registry.Delete(locked)

	f.mu.Lock()
	f.live--
	live := f.live
	errs = multierr.Append(errs, f.releaseRuntimeLocked())
	f.mu.Unlock()
	f.metrics.SetLive(live)

	if errs != nil {
		for range multierr.Errors(errs) {
			f.metrics.IncTeardownError()
		}
		logger.Warn("参与者销毁时出现错误", "domain", id, "handle", h, "error", errs)
	}

	logger.Info("参与者已删除", "domain", id, "handle", h, "live", live, "elapsed", f.clock.Since(start))
	return nil
}

// ============================================================================
//                              查找与工厂级 QoS
// ============================================================================

// Lookup 按域查找参与者，不存在或域已关闭时返回 nil
func (f *Factory) Lookup(id types.DomainID) *domain.Participant {
	return f.registry.Lookup(id)
}

// LiveParticipants 返回存活参与者数
func (f *Factory) LiveParticipants() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

// DefaultParticipantQos 返回工厂默认参与者 QoS 的拷贝
func (f *Factory) DefaultParticipantQos() types.DomainParticipantQos {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.defaultQos.Clone()
}

// SetDefaultParticipantQos 设置工厂默认参与者 QoS
//
// q 为 types.ParticipantQosDefault 时恢复内置默认值；非法时返回
// ErrInconsistentPolicy 且不修改当前值。
func (f *Factory) SetDefaultParticipantQos(q *types.DomainParticipantQos) error {
	if q == types.ParticipantQosDefault {
		f.mu.Lock()
		f.defaultQos = qos.DefaultParticipantQos()
		f.mu.Unlock()
		return nil
	}

	if err := f.policy.ValidParticipantQos(q); err != nil {
		return fmt.Errorf("set default participant qos: %w: %w", types.ErrInconsistentPolicy, err)
	}

	f.mu.Lock()
	f.defaultQos = q.Clone()
	f.mu.Unlock()
	return nil
}

// Qos 返回工厂 QoS
func (f *Factory) Qos() types.DomainParticipantFactoryQos {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.factoryQos
}

// SetQos 设置工厂 QoS，q 为 nil 时返回 ErrBadParameter
func (f *Factory) SetQos(q *types.DomainParticipantFactoryQos) error {
	if q == nil {
		return fmt.Errorf("set factory qos: %w", types.ErrBadParameter)
	}
	f.mu.Lock()
	f.factoryQos = *q
	f.mu.Unlock()
	return nil
}

func resultLabel(err error) string {
	if err == nil {
		return metrics.ResultOK
	}
	return types.ReturnCodeOf(err).String()
}
