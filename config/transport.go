package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TransportConfig 协议绑定配置
type TransportConfig struct {
	// Enabled 是否启用协议绑定（启用参与者时注册协议层参与者）
	Enabled bool `json:"enabled" toml:"enabled" env:"DCPS_TRANSPORT_ENABLED"`
}

// DefaultTransportConfig 返回默认协议绑定配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Enabled: true,
	}
}

// ForwardConfig 转发中继配置
type ForwardConfig struct {
	// Relays 中继地址列表，非空时参与者分配中继表
	Relays []string `json:"relays,omitempty" toml:"relays" env:"DCPS_FORWARD_RELAYS" envSeparator:","`
}

// DefaultForwardConfig 返回默认转发配置
func DefaultForwardConfig() ForwardConfig {
	return ForwardConfig{}
}

// Validate 验证转发配置
func (c ForwardConfig) Validate() error {
	for _, r := range c.Relays {
		if strings.TrimSpace(r) == "" {
			return errors.New("forward: empty relay address")
		}
		if !strings.Contains(r, ":") {
			return fmt.Errorf("forward: relay %q must be host:port", r)
		}
	}
	return nil
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否启用指标
	Enabled bool `json:"enabled" toml:"enabled" env:"DCPS_METRICS_ENABLED"`

	// Namespace 指标命名空间
	Namespace string `json:"namespace" toml:"namespace"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "dcps",
	}
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 默认日志级别（debug/info/warn/error）
	Level string `json:"level" toml:"level"`

	// Debug 为 true 时输出 fx 依赖注入事件
	Debug bool `json:"debug" toml:"debug" env:"DCPS_DEBUG"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level: "info",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("log: unknown level %q", c.Level)
	}
}

// ConditionConfig 状态条件分发配置
type ConditionConfig struct {
	// FlushInterval 延迟注册表的周期刷新间隔
	FlushInterval Interval `json:"flush_interval" toml:"flush_interval" env:"DCPS_CONDITION_FLUSH_INTERVAL"`
}

// DefaultConditionConfig 返回默认状态条件配置
func DefaultConditionConfig() ConditionConfig {
	return ConditionConfig{
		FlushInterval: Interval(50 * time.Millisecond),
	}
}

// Validate 验证状态条件配置
func (c ConditionConfig) Validate() error {
	if c.FlushInterval <= 0 {
		return errors.New("condition: flush_interval must be > 0")
	}
	return nil
}
