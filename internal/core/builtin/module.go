package builtin

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-dcps/config"
	"github.com/dep2p/go-dcps/internal/core/domain"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Service *Service
	Binder  domain.Binder `name:"binder"`
}

// ProvideServices 提供内置实体服务，同时作为注册表的 Binder
func ProvideServices(input ModuleInput) ModuleOutput {
	transport := config.DefaultTransportConfig()
	if input.Config != nil {
		transport = input.Config.Transport
	}
	s := NewService(transport.Enabled)
	return ModuleOutput{Service: s, Binder: s}
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("builtin",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	Version     = "1.0.0"
	Name        = "builtin"
	Description = "内置实体模块，管理内置发现读者与协议层绑定"
)
