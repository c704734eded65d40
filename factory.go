package dcps

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"

	"github.com/dep2p/go-dcps/config"
	"github.com/dep2p/go-dcps/internal/core/factory"
	"github.com/dep2p/go-dcps/internal/core/runtime"
	"github.com/dep2p/go-dcps/pkg/lib/log"
)

var logger = log.Logger("dcps")

// ════════════════════════════════════════════════════════════════════════════
//                              Factory 结构
// ════════════════════════════════════════════════════════════════════════════

// Factory 域参与者工厂
//
// 所有方法并发安全。工厂需要先 Start 才能创建参与者；Close 之后
// 所有操作返回 ErrFactoryClosed。
type Factory struct {
	cfg *config.Config
	app *fx.App

	// 由 fx 注入
	core    *factory.Factory
	runtime *runtime.Runtime

	mu      sync.Mutex
	started bool
	closed  bool
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建工厂（不启动）
//
// 示例：
//
//	f, err := dcps.New(
//	    dcps.WithConfigFile("dcps.toml"),
//	    dcps.WithEntityName("sensor-gw"),
//	)
func New(opts ...Option) (*Factory, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.resolve()
	if err != nil {
		return nil, err
	}
	applyLogging(cfg.Log)

	f := &Factory{cfg: cfg}
	f.app, err = buildFxApp(cfg, o, f)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Start 快捷启动函数，等价于 New() + Start()
func Start(ctx context.Context, opts ...Option) (*Factory, error) {
	f, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := f.Start(ctx); err != nil {
		return nil, fmt.Errorf("start factory: %w", err)
	}
	return f, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              进程级单例
// ════════════════════════════════════════════════════════════════════════════

var (
	instanceOnce sync.Once
	instance     *Factory
	instanceErr  error
)

// Instance 返回进程级工厂
//
// 首次调用时按默认配置（含 DCPS_* 环境变量）创建并启动，之后返回同一实例。
// 创建失败时每次调用都返回相同的错误。
func Instance() (*Factory, error) {
	instanceOnce.Do(func() {
		instance, instanceErr = Start(context.Background())
		if instanceErr != nil {
			logger.Error("进程级工厂创建失败", "error", instanceErr)
		}
	})
	return instance, instanceErr
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动工厂
func (f *Factory) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFactoryClosed
	}
	if f.started {
		return ErrAlreadyStarted
	}
	if err := f.app.Start(ctx); err != nil {
		return err
	}
	f.started = true
	logger.Info("工厂已启动", "version", Version)
	return nil
}

// Close 关闭工厂
//
// 不会删除仍存活的参与者；调用方应先逐个删除。重复调用无副作用。
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	if !f.started {
		return nil
	}
	return f.app.Stop(context.Background())
}

// Config 返回工厂配置的拷贝
func (f *Factory) Config() *config.Config {
	return f.cfg.Clone()
}

// RuntimeRunning 检查进程级运行时是否已初始化
func (f *Factory) RuntimeRunning() bool {
	return f.runtime.Running()
}

// active 返回可用的内部工厂
func (f *Factory) active() (*factory.Factory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case f.closed:
		return nil, ErrFactoryClosed
	case !f.started:
		return nil, ErrNotStarted
	default:
		return f.core, nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              参与者操作
// ════════════════════════════════════════════════════════════════════════════

// CreateParticipant 在指定域创建参与者
//
// q 为 ParticipantQosDefault 时使用调用时刻的工厂默认 QoS；
// listener 为 nil 表示不设置监听器。
func (f *Factory) CreateParticipant(id DomainID, q *ParticipantQos, listener *Listener, mask StatusMask) (*Participant, error) {
	core, err := f.active()
	if err != nil {
		return nil, err
	}
	return core.Create(id, q, listener, mask)
}

// DeleteParticipant 删除参与者
//
// 参与者仍有子实体时返回 ErrPreconditionNotMet，参与者保持可用，
// 但 LookupParticipant 不再返回它。
func (f *Factory) DeleteParticipant(p *Participant) error {
	core, err := f.active()
	if err != nil {
		return err
	}
	return core.Delete(p)
}

// LookupParticipant 按域查找参与者，不存在或正在删除时返回 nil
func (f *Factory) LookupParticipant(id DomainID) *Participant {
	core, err := f.active()
	if err != nil {
		return nil
	}
	return core.Lookup(id)
}

// LiveParticipants 返回存活参与者数
func (f *Factory) LiveParticipants() int {
	core, err := f.active()
	if err != nil {
		return 0
	}
	return core.LiveParticipants()
}

// ════════════════════════════════════════════════════════════════════════════
//                              工厂级 QoS
// ════════════════════════════════════════════════════════════════════════════

// DefaultParticipantQos 返回默认参与者 QoS 的拷贝
func (f *Factory) DefaultParticipantQos() (ParticipantQos, error) {
	core, err := f.active()
	if err != nil {
		return ParticipantQos{}, err
	}
	return core.DefaultParticipantQos(), nil
}

// SetDefaultParticipantQos 设置默认参与者 QoS，ParticipantQosDefault 恢复内置默认值
func (f *Factory) SetDefaultParticipantQos(q *ParticipantQos) error {
	core, err := f.active()
	if err != nil {
		return err
	}
	return core.SetDefaultParticipantQos(q)
}

// Qos 返回工厂 QoS
func (f *Factory) Qos() (FactoryQos, error) {
	core, err := f.active()
	if err != nil {
		return FactoryQos{}, err
	}
	return core.Qos(), nil
}

// SetQos 设置工厂 QoS，q 为 nil 时返回 ErrBadParameter
func (f *Factory) SetQos(q *FactoryQos) error {
	core, err := f.active()
	if err != nil {
		return err
	}
	return core.SetQos(q)
}
