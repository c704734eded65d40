// Package lib 包含基础设施工具库
//
// 本目录包含与 DCPS 实体无关的通用工具库：
//
//   - log: 基于 log/slog 的组件日志封装
//
// # 使用示例
//
//	import "github.com/dep2p/go-dcps/pkg/lib/log"
//
//	var logger = log.Logger("core/factory")
package lib
