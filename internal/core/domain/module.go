package domain

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-dcps/config"
	"github.com/dep2p/go-dcps/internal/core/condition"
	"github.com/dep2p/go-dcps/internal/core/ledger"
	"github.com/dep2p/go-dcps/internal/core/qos"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config     *config.Config        `optional:"true"`
	Binder     Binder                `name:"binder" optional:"true"`
	Dispatcher *condition.Dispatcher `optional:"true"`
	Ledger     *ledger.Ledger        `optional:"true"`
}

// ProvideRegistry 提供参与者注册表
func ProvideRegistry(input ModuleInput) *Registry {
	factory := config.DefaultFactoryConfig()
	if input.Config != nil {
		factory = input.Config.Factory
	}
	return NewRegistry(Options{
		MaxParticipants: factory.MaxParticipants,
		Binder:          input.Binder,
		Dispatcher:      input.Dispatcher,
		Ledger:          input.Ledger,
		QosPolicy:       qos.Policy{MaxUserDataSize: factory.MaxUserDataSize},
	})
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("domain",
		fx.Provide(ProvideRegistry),
	)
}

// 模块元信息常量
const (
	Version     = "1.0.0"
	Name        = "domain"
	Description = "参与者注册表模块，按域号管理参与者记录"
)
