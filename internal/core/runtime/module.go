package runtime

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-dcps/internal/core/condition"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Dispatcher *condition.Dispatcher `optional:"true"`
}

// ProvideRuntime 提供运行时，延迟通知刷新协程随运行时启停
func ProvideRuntime(input ModuleInput) *Runtime {
	r := New()
	if d := input.Dispatcher; d != nil {
		r.Append(Hook{
			Name:   "condition-dispatcher",
			OnInit: d.Start,
			OnFinal: func() error {
				d.Stop()
				return nil
			},
		})
	}
	return r
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("runtime",
		fx.Provide(ProvideRuntime),
	)
}

// 模块元信息常量
const (
	Version     = "1.0.0"
	Name        = "runtime"
	Description = "进程级运行时模块，随参与者数量惰性初始化与终结"
)
