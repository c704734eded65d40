package condition

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-dcps/config"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config `optional:"true"`
	Clock  clock.Clock    `optional:"true"`
}

// ProvideDispatcher 提供延迟通知注册表
//
// 刷新协程的启停由运行时在首个参与者创建与最后一个参与者删除时驱动，
// 不挂在 fx 生命周期上。
func ProvideDispatcher(input ModuleInput) *Dispatcher {
	interval := DefaultFlushInterval
	if input.Config != nil {
		interval = input.Config.Condition.FlushInterval.Duration()
	}
	return NewDispatcher(input.Clock, interval)
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("condition",
		fx.Provide(ProvideDispatcher),
	)
}

// 模块元信息常量
const (
	Version     = "1.0.0"
	Name        = "condition"
	Description = "状态条件模块，提供等待集与延迟通知注册表"
)
