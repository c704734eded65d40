package config

import "errors"

// ValidateAll 验证整个配置的有效性
//
// 与 Config.Validate() 相同，额外处理 nil。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并修复可修复的问题
//
// 可修复的问题：
//   - 用户数据上限非正 -> 使用默认值
//   - 权限缓存容量非正 -> 使用默认值
//   - 条件刷新周期非正 -> 使用默认值
//   - 指标命名空间为空 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.Factory.MaxUserDataSize <= 0 {
		c.Factory.MaxUserDataSize = DefaultFactoryConfig().MaxUserDataSize
	}
	if c.Security.PermissionsCacheSize <= 0 {
		c.Security.PermissionsCacheSize = DefaultSecurityConfig().PermissionsCacheSize
	}
	if c.Condition.FlushInterval <= 0 {
		c.Condition.FlushInterval = DefaultConditionConfig().FlushInterval
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsConfig().Namespace
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
