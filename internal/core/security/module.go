package security

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/dep2p/go-dcps/config"
	"github.com/dep2p/go-dcps/pkg/types"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置（可选，缺省为非安全模式）
	Config *config.Config `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Gatekeeper 安全准入
	Gatekeeper Gatekeeper `name:"gatekeeper"`

	// Identity 本地身份
	Identity Identity `name:"identity"`
}

// ============================================================================
//                              服务提供
// ============================================================================

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	cfg := config.DefaultSecurityConfig()
	if input.Config != nil {
		cfg = input.Config.Security
	}

	gk, ident, err := FromConfig(cfg)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Gatekeeper: gk, Identity: ident}, nil
}

// FromConfig 根据配置构建 Gatekeeper 与本地身份
//
// 未启用安全时返回 Disabled 与零值身份。
func FromConfig(cfg config.SecurityConfig) (Gatekeeper, Identity, error) {
	if !cfg.Enabled {
		return Disabled{}, Identity{}, nil
	}

	key, err := cfg.IdentityKeyBytes()
	if err != nil {
		return nil, Identity{}, err
	}
	ident := Identity{Name: cfg.IdentityName, Key: key}

	policy, err := PolicyFromConfig(cfg)
	if err != nil {
		return nil, Identity{}, err
	}

	gk, err := NewPolicyGatekeeper(policy, cfg.PermissionsCacheSize,
		WithAllowUnknownDomains(cfg.AllowUnknownDomains))
	if err != nil {
		return nil, Identity{}, err
	}
	return gk, ident, nil
}

// PolicyFromConfig 将配置规则装入新策略，整体只产生一次版本递增
func PolicyFromConfig(cfg config.SecurityConfig) (*Policy, error) {
	policy := NewPolicy()
	if err := policy.UpdateStart(); err != nil {
		return nil, err
	}
	defer policy.UpdateDone()

	for _, d := range cfg.Domains {
		caps, err := ParseCapabilities(d.Capabilities)
		if err != nil {
			return nil, fmt.Errorf("domain %d: %w", d.ID, err)
		}
		policy.AddDomain(types.DomainID(d.ID), DomainRule{Secure: d.Secure, Capabilities: caps})
	}

	for _, p := range cfg.Participants {
		c, err := policy.AddParticipant(p.Name)
		if err != nil {
			return nil, err
		}
		for _, part := range p.Partitions {
			perms := Perms{Read: part.Read, Write: part.Write, Blacklist: part.Blacklist}
			if err := policy.AddPartition(c, part.Name, perms); err != nil {
				return nil, err
			}
		}
	}
	return policy, nil
}

// ParseCapabilities 解析能力名称列表
func ParseCapabilities(names []string) (Capability, error) {
	var caps Capability
	for _, n := range names {
		switch n {
		case "authentication":
			caps |= CapAuthentication
		case "access_control":
			caps |= CapAccessControl
		case "encryption":
			caps |= CapEncryption
		case "signed_discovery":
			caps |= CapSignedDiscovery
		default:
			return 0, fmt.Errorf("unknown capability %q", n)
		}
	}
	return caps, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("security",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC         fx.Lifecycle
	Gatekeeper Gatekeeper `name:"gatekeeper"`
	Identity   Identity   `name:"identity"`
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			_, secure := input.Gatekeeper.(*PolicyGatekeeper)
			logger.Info("安全模块启动", "policy", secure, "identity", input.Identity.Name)
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info("安全模块停止")
			return nil
		},
	})
}

// ============================================================================
//                              模块元信息
// ============================================================================

// 模块元信息常量
const (
	Version     = "1.0.0"
	Name        = "security"
	Description = "安全准入模块，提供域准入判定与身份/权限令牌派生"
)
