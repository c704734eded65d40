// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON / TOML 文件加载
//   - 支持 DCPS_* 环境变量覆盖
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Factory.EntityName = "sensor-gw"
//
//	// 从文件加载并应用环境变量
//	cfg, err := config.Load("dcps.toml")
package config

// Config 是 go-dcps 的完整配置结构
//
// 配置按照功能模块组织：
//   - Factory: 参与者工厂（自动启用、实体名、资源上限）
//   - Security: 安全准入（身份、域规则、参与者授权）
//   - Transport: 协议绑定
//   - Forward: 转发中继
//   - Condition: 状态条件分发
//   - Metrics: 指标
//   - Log: 日志
type Config struct {
	// Factory 参与者工厂配置
	Factory FactoryConfig `json:"factory" toml:"factory"`

	// Security 安全配置
	Security SecurityConfig `json:"security" toml:"security"`

	// Transport 协议绑定配置
	Transport TransportConfig `json:"transport" toml:"transport"`

	// Forward 转发中继配置
	Forward ForwardConfig `json:"forward" toml:"forward"`

	// Condition 状态条件分发配置
	Condition ConditionConfig `json:"condition" toml:"condition"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" toml:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log" toml:"log"`
}

// NewConfig 创建默认配置
//
// 返回的配置使用所有组件的默认值，适用于大多数场景。
func NewConfig() *Config {
	return &Config{
		Factory:   DefaultFactoryConfig(),
		Security:  DefaultSecurityConfig(),
		Transport: DefaultTransportConfig(),
		Forward:   DefaultForwardConfig(),
		Condition: DefaultConditionConfig(),
		Metrics:   DefaultMetricsConfig(),
		Log:       DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.Factory.Validate(); err != nil {
		return err
	}
	if err := c.Security.Validate(); err != nil {
		return err
	}
	if err := c.Forward.Validate(); err != nil {
		return err
	}
	if err := c.Condition.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}

// Clone 深拷贝配置
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Forward.Relays = append([]string(nil), c.Forward.Relays...)
	out.Security.Domains = append([]DomainRuleConfig(nil), c.Security.Domains...)
	out.Security.Participants = make([]ParticipantRuleConfig, len(c.Security.Participants))
	for i, p := range c.Security.Participants {
		out.Security.Participants[i] = p
		out.Security.Participants[i].Partitions = append([]PartitionConfig(nil), p.Partitions...)
	}
	return &out
}
