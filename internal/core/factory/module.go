package factory

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-dcps/config"
	"github.com/dep2p/go-dcps/internal/core/builtin"
	"github.com/dep2p/go-dcps/internal/core/domain"
	"github.com/dep2p/go-dcps/internal/core/metrics"
	"github.com/dep2p/go-dcps/internal/core/qos"
	"github.com/dep2p/go-dcps/internal/core/runtime"
	"github.com/dep2p/go-dcps/internal/core/security"
	"github.com/dep2p/go-dcps/pkg/types"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Registry *domain.Registry
	Runtime  *runtime.Runtime

	Config     *config.Config      `optional:"true"`
	Gatekeeper security.Gatekeeper `name:"gatekeeper" optional:"true"`
	Identity   security.Identity   `name:"identity" optional:"true"`
	Builtin    *builtin.Service    `optional:"true"`
	Metrics    *metrics.Metrics    `optional:"true"`
	Clock      clock.Clock         `optional:"true"`
}

// ============================================================================
//                              服务提供
// ============================================================================

// ProvideFactory 提供参与者工厂
func ProvideFactory(input ModuleInput) (*Factory, error) {
	cfg := config.NewConfig()
	if input.Config != nil {
		cfg = input.Config
	}

	opts := Options{
		Registry:   input.Registry,
		Gatekeeper: input.Gatekeeper,
		Identity:   input.Identity,
		Runtime:    input.Runtime,
		Metrics:    input.Metrics,
		Clock:      input.Clock,
		QosPolicy:  qos.Policy{MaxUserDataSize: cfg.Factory.MaxUserDataSize},
		FactoryQos: &types.DomainParticipantFactoryQos{
			EntityFactory: types.EntityFactoryQosPolicy{AutoEnableCreatedEntities: cfg.Factory.AutoEnable},
		},
		EntityName: cfg.Factory.EntityName,
		Relays:     cfg.Forward.Relays,
	}
	// 避免把 nil *builtin.Service 装进非 nil 接口
	if input.Builtin != nil {
		opts.Builtin = input.Builtin
	}
	return New(opts)
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("factory",
		fx.Provide(ProvideFactory),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Factory *Factory
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("参与者工厂启动",
				"autoenable", input.Factory.Qos().EntityFactory.AutoEnableCreatedEntities)
			return nil
		},
		OnStop: func(_ context.Context) error {
			if n := input.Factory.LiveParticipants(); n > 0 {
				logger.Warn("参与者工厂停止时仍有存活参与者", "live", n)
			} else {
				logger.Info("参与者工厂停止")
			}
			return nil
		},
	})
}

// ============================================================================
//                              模块元信息
// ============================================================================

// 模块元信息常量
const (
	Version     = "1.0.0"
	Name        = "factory"
	Description = "参与者工厂模块，负责参与者的创建、删除与工厂级默认 QoS"
)
