package ledger

import "go.uber.org/fx"

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(New),
	)
}

// 模块元信息常量
const (
	Version     = "1.0.0"
	Name        = "ledger"
	Description = "共享字符串账本模块，管理引用计数的字符串与字节序列"
)
