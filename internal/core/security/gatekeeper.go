package security

//go:generate mockgen -source=gatekeeper.go -destination=mocks/gatekeeper.go -package=mocks Gatekeeper

import "github.com/dep2p/go-dcps/pkg/types"

// MaxTokenSize 令牌最大长度（字节）
const MaxTokenSize = 128

// ============================================================================
//                              基础类型
// ============================================================================

// PermissionsHandle 本地权限句柄，0 表示无权限
type PermissionsHandle uint64

// PermissionsNil 无权限句柄
const PermissionsNil PermissionsHandle = 0

// Capability 域安全能力位掩码
type Capability uint32

const (
	// CapAuthentication 参与者需要认证
	CapAuthentication Capability = 1 << iota
	// CapAccessControl 启用访问控制
	CapAccessControl
	// CapEncryption 载荷加密
	CapEncryption
	// CapSignedDiscovery 发现数据签名
	CapSignedDiscovery
)

// Has 检查是否包含指定能力
func (c Capability) Has(o Capability) bool {
	return c&o == o
}

// Identity 本地身份
type Identity struct {
	// Name 身份名称（策略中的参与者名）
	Name string

	// Key 身份密钥材料，用于令牌派生
	Key []byte
}

// IsZero 检查身份是否未配置
func (i Identity) IsZero() bool {
	return i.Name == "" && len(i.Key) == 0
}

// Decision 准入结果
type Decision struct {
	// Secure 是否为安全域
	Secure bool

	// Capabilities 域安全能力
	Capabilities Capability
}

// ============================================================================
//                              Gatekeeper 接口
// ============================================================================

// Gatekeeper 安全准入接口
type Gatekeeper interface {
	// ValidateLocalPermissions 校验本地身份在指定域的权限
	ValidateLocalPermissions(domain types.DomainID, identity Identity) (PermissionsHandle, error)

	// CheckCreateParticipant 检查是否允许在指定域创建参与者
	//
	// 拒绝时返回包装了 types.ErrAccessDenied 的错误。
	CheckCreateParticipant(perm PermissionsHandle, domain types.DomainID, qos *types.DomainParticipantQos) (Decision, error)

	// IdentityToken 派生身份令牌
	IdentityToken(identity Identity) ([]byte, error)

	// PermissionsToken 派生权限令牌
	PermissionsToken(perm PermissionsHandle) ([]byte, error)
}
