package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dep2p/go-dcps/pkg/types"
)

// SecurityConfig 安全准入配置
//
// Enabled 为 false 时使用非安全 Gatekeeper，其余字段被忽略。
type SecurityConfig struct {
	// Enabled 是否启用安全准入
	Enabled bool `json:"enabled" toml:"enabled" env:"DCPS_SECURITY_ENABLED"`

	// IdentityName 本地身份名称
	IdentityName string `json:"identity_name,omitempty" toml:"identity_name" env:"DCPS_IDENTITY_NAME"`

	// IdentityKey 本地身份密钥（十六进制）
	IdentityKey string `json:"identity_key,omitempty" toml:"identity_key" env:"DCPS_IDENTITY_KEY"`

	// AllowUnknownDomains 未声明的域以非安全模式放行
	AllowUnknownDomains bool `json:"allow_unknown_domains" toml:"allow_unknown_domains" env:"DCPS_ALLOW_UNKNOWN_DOMAINS"`

	// PermissionsCacheSize 权限句柄缓存容量
	PermissionsCacheSize int `json:"permissions_cache_size" toml:"permissions_cache_size"`

	// Domains 域规则
	Domains []DomainRuleConfig `json:"domains,omitempty" toml:"domains"`

	// Participants 参与者授权
	Participants []ParticipantRuleConfig `json:"participants,omitempty" toml:"participants"`
}

// DomainRuleConfig 域规则配置
type DomainRuleConfig struct {
	ID           uint32   `json:"id" toml:"id"`
	Secure       bool     `json:"secure" toml:"secure"`
	Capabilities []string `json:"capabilities,omitempty" toml:"capabilities"`
}

// ParticipantRuleConfig 参与者授权配置
type ParticipantRuleConfig struct {
	Name       string            `json:"name" toml:"name"`
	Partitions []PartitionConfig `json:"partitions,omitempty" toml:"partitions"`
}

// PartitionConfig 分区授权配置
type PartitionConfig struct {
	Name      string `json:"name" toml:"name"`
	Read      bool   `json:"read" toml:"read"`
	Write     bool   `json:"write" toml:"write"`
	Blacklist bool   `json:"blacklist" toml:"blacklist"`
}

// KnownCapabilities 可识别的能力名称
var KnownCapabilities = []string{"authentication", "access_control", "encryption", "signed_discovery"}

// DefaultSecurityConfig 返回默认安全配置
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		Enabled:              false, // 默认非安全：与未编译安全插件时的行为一致
		AllowUnknownDomains:  true,  // 未声明的域放行
		PermissionsCacheSize: 128,   // 权限缓存：128 条
	}
}

// IdentityKeyBytes 解码身份密钥
func (c SecurityConfig) IdentityKeyBytes() ([]byte, error) {
	if c.IdentityKey == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(c.IdentityKey)
	if err != nil {
		return nil, fmt.Errorf("security: identity_key: %w", err)
	}
	return b, nil
}

// Validate 验证安全配置
func (c SecurityConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.IdentityName == "" {
		return errors.New("security: identity_name is required when enabled")
	}
	if _, err := c.IdentityKeyBytes(); err != nil {
		return err
	}
	if c.PermissionsCacheSize < 0 {
		return errors.New("security: permissions_cache_size must be >= 0")
	}

	seen := make(map[uint32]struct{}, len(c.Domains))
	for _, d := range c.Domains {
		if !types.DomainID(d.ID).Valid() {
			return fmt.Errorf("security: domain %d out of range", d.ID)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("security: duplicate domain rule %d", d.ID)
		}
		seen[d.ID] = struct{}{}
		for _, name := range d.Capabilities {
			if !isKnownCapability(name) {
				return fmt.Errorf("security: domain %d: unknown capability %q", d.ID, name)
			}
		}
	}

	for _, p := range c.Participants {
		if strings.TrimSpace(p.Name) == "" {
			return errors.New("security: participant name is required")
		}
		for _, part := range p.Partitions {
			if part.Name == "" {
				return fmt.Errorf("security: participant %q: partition name is required", p.Name)
			}
		}
	}
	return nil
}

func isKnownCapability(name string) bool {
	for _, k := range KnownCapabilities {
		if k == name {
			return true
		}
	}
	return false
}
