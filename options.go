package dcps

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-dcps/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// config 完整配置，nil 时使用默认值并应用环境变量
	config *config.Config

	// 以下字段在 config 之上覆盖
	autoEnable *bool
	entityName *string
	relays     []string

	registerer prometheus.Registerer
	clock      clock.Clock

	// userFxOptions 用户自定义 fx 选项（测试替换协作方等）
	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{}
}

// resolve 生成最终配置
func (o *options) resolve() (*config.Config, error) {
	cfg := o.config
	if cfg == nil {
		loaded, err := config.Load("")
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = cfg.Clone()
	}

	if o.autoEnable != nil {
		cfg.Factory.AutoEnable = *o.autoEnable
	}
	if o.entityName != nil {
		cfg.Factory.EntityName = *o.entityName
	}
	if o.relays != nil {
		cfg.Forward.Relays = append([]string(nil), o.relays...)
	}

	if err := config.ValidateAll(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置选项
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置
//
// 配置被拷贝，之后修改 cfg 不影响工厂。不会再应用环境变量。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config is nil: %w", ErrBadParameter)
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON/TOML 文件加载配置，并应用 DCPS_* 环境变量
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		o.config = cfg
		return nil
	}
}

// WithAutoEnable 设置工厂 QoS 初值中的自动启用开关
func WithAutoEnable(enable bool) Option {
	return func(o *options) error {
		o.autoEnable = &enable
		return nil
	}
}

// WithEntityName 设置进程级实体名
func WithEntityName(name string) Option {
	return func(o *options) error {
		o.entityName = &name
		return nil
	}
}

// WithRelays 设置转发中继地址
func WithRelays(addrs ...string) Option {
	return func(o *options) error {
		o.relays = append([]string{}, addrs...)
		return nil
	}
}

// WithRegisterer 在指定的 prometheus Registerer 上注册指标
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithClock 使用指定时钟（测试用）
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithFxOption 追加自定义 fx 选项
//
// 用于替换内部协作方，例如通过 fx.Decorate 注入测试用的安全准入。
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
