// Package metrics 提供参与者生命周期的 Prometheus 指标
//
// 所有方法对 nil *Metrics 安全，指标关闭时调用方无需判空。
package metrics
