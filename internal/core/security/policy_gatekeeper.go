package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/hkdf"

	"github.com/dep2p/go-dcps/pkg/lib/log"
	"github.com/dep2p/go-dcps/pkg/types"
)

var logger = log.Logger("core/security")

const (
	// IdentityTokenSalt 身份令牌派生盐值
	IdentityTokenSalt = "dcps-identity-token-v1"

	// PermissionsTokenSalt 权限令牌密钥派生盐值
	PermissionsTokenSalt = "dcps-permissions-token-v1"

	// DefaultPermissionsCacheSize 权限句柄缓存默认容量
	DefaultPermissionsCacheSize = 128

	// wildcardPartition 通配分区名
	wildcardPartition = "*"
)

// permKey 权限缓存键
type permKey struct {
	domain  types.DomainID
	name    string
	version uint64
}

// grant 已签发的权限
type grant struct {
	domain   types.DomainID
	identity Identity
	version  uint64
}

// ============================================================================
//                              PolicyGatekeeper 实现
// ============================================================================

// PolicyGatekeeper 基于 Policy 的 Gatekeeper
type PolicyGatekeeper struct {
	policy       *Policy
	allowUnknown bool

	// mu 保护 cache 与 grants；缓存淘汰回调在持有 mu 时同步执行
	mu      sync.Mutex
	cache   *lru.Cache[permKey, PermissionsHandle]
	grants  map[PermissionsHandle]grant
	next    PermissionsHandle
	version uint64
}

var _ Gatekeeper = (*PolicyGatekeeper)(nil)

// GatekeeperOption PolicyGatekeeper 选项
type GatekeeperOption func(*PolicyGatekeeper)

// WithAllowUnknownDomains 未在策略中声明的域以非安全模式放行
func WithAllowUnknownDomains(allow bool) GatekeeperOption {
	return func(g *PolicyGatekeeper) {
		g.allowUnknown = allow
	}
}

// NewPolicyGatekeeper 创建基于策略的 Gatekeeper
func NewPolicyGatekeeper(policy *Policy, cacheSize int, opts ...GatekeeperOption) (*PolicyGatekeeper, error) {
	if policy == nil {
		return nil, fmt.Errorf("policy is required: %w", types.ErrBadParameter)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultPermissionsCacheSize
	}
	g := &PolicyGatekeeper{
		policy: policy,
		grants: make(map[PermissionsHandle]grant),
		next:   1,
	}
	cache, err := lru.NewWithEvict[permKey, PermissionsHandle](cacheSize, func(_ permKey, h PermissionsHandle) {
		delete(g.grants, h)
	})
	if err != nil {
		return nil, fmt.Errorf("create permissions cache: %w", err)
	}
	g.cache = cache
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Policy 返回底层策略
func (g *PolicyGatekeeper) Policy() *Policy {
	return g.policy
}

// ValidateLocalPermissions 签发（或复用）权限句柄
//
// 同一策略版本下，相同 (domain, identity) 复用缓存的句柄。只保留仍在
// 缓存中的句柄：被淘汰或早于当前策略版本的句柄失效。
func (g *PolicyGatekeeper) ValidateLocalPermissions(domain types.DomainID, identity Identity) (PermissionsHandle, error) {
	if identity.Name == "" {
		return PermissionsNil, ErrNoIdentity
	}

	key := permKey{domain: domain, name: identity.Name, version: g.policy.Version()}

	g.mu.Lock()
	defer g.mu.Unlock()

	if h, ok := g.cache.Get(key); ok {
		return h, nil
	}
	if key.version > g.version {
		g.pruneLocked(key.version)
	}

	h := g.next
	g.next++
	g.grants[h] = grant{domain: domain, identity: identity, version: key.version}
	if g.cache.Add(key, h) {
		logger.Debug("权限缓存淘汰", "domain", domain, "identity", identity.Name)
	}
	return h, nil
}

// pruneLocked 丢弃早于 version 的句柄，调用方持有 g.mu
func (g *PolicyGatekeeper) pruneLocked(version uint64) {
	for _, key := range g.cache.Keys() {
		if key.version < version {
			g.cache.Remove(key)
		}
	}
	for h, gr := range g.grants {
		if gr.version < version {
			delete(g.grants, h)
		}
	}
	g.version = version
}

func (g *PolicyGatekeeper) lookup(perm PermissionsHandle) (grant, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	gr, ok := g.grants[perm]
	return gr, ok
}

// CheckCreateParticipant 按策略判定是否准入
//
// 规则：
//  1. 域未声明：allowUnknown 时以非安全模式放行，否则拒绝
//  2. 域已声明：身份必须是策略参与者，且未被通配分区拉黑
//  3. 放行时 Secure/Capabilities 取自域规则
func (g *PolicyGatekeeper) CheckCreateParticipant(perm PermissionsHandle, domain types.DomainID, _ *types.DomainParticipantQos) (Decision, error) {
	gr, ok := g.lookup(perm)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %w", types.ErrAccessDenied, ErrUnknownPermissions)
	}
	if gr.domain != domain {
		return Decision{}, fmt.Errorf("%w: permissions issued for domain %d, not %d", types.ErrAccessDenied, gr.domain, domain)
	}

	rule, ok := g.policy.Domain(domain)
	if !ok {
		if g.allowUnknown {
			return Decision{}, nil
		}
		return Decision{}, fmt.Errorf("%w: domain %d not in policy", types.ErrAccessDenied, domain)
	}

	partitions, ok := g.policy.Partitions(gr.identity.Name)
	if !ok {
		return Decision{}, fmt.Errorf("%w: identity %q not in policy", types.ErrAccessDenied, gr.identity.Name)
	}
	for _, p := range partitions {
		if p.Name == wildcardPartition && p.Perms.Blacklist {
			return Decision{}, fmt.Errorf("%w: identity %q blacklisted", types.ErrAccessDenied, gr.identity.Name)
		}
	}

	return Decision{Secure: rule.Secure, Capabilities: rule.Capabilities}, nil
}

// IdentityToken 派生身份令牌
//
// 格式: name || 0x00 || HKDF-SHA256(key, IdentityTokenSalt, name)[:32]
func (g *PolicyGatekeeper) IdentityToken(identity Identity) ([]byte, error) {
	if identity.Name == "" {
		return nil, ErrNoIdentity
	}
	if len(identity.Name)+1+sha256.Size > MaxTokenSize {
		return nil, fmt.Errorf("%w: identity %q", ErrTokenTooLarge, identity.Name)
	}

	derived, err := derive(identity.Key, IdentityTokenSalt, identity.Name)
	if err != nil {
		return nil, err
	}
	token := make([]byte, 0, len(identity.Name)+1+len(derived))
	token = append(token, identity.Name...)
	token = append(token, 0)
	token = append(token, derived...)
	return token, nil
}

// PermissionsToken 派生权限令牌
//
// MAC = HMAC-SHA256(
//
//	key  = HKDF(identity.Key, PermissionsTokenSalt, name),
//	data = domain || version || partitions...
//
// )
func (g *PolicyGatekeeper) PermissionsToken(perm PermissionsHandle) ([]byte, error) {
	gr, ok := g.lookup(perm)
	if !ok {
		return nil, ErrUnknownPermissions
	}

	key, err := derive(gr.identity.Key, PermissionsTokenSalt, gr.identity.Name)
	if err != nil {
		return nil, err
	}

	h := hmac.New(sha256.New, key)
	var hdr [12]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(gr.domain))
	binary.BigEndian.PutUint64(hdr[4:12], gr.version)
	h.Write(hdr[:])

	partitions, _ := g.policy.Partitions(gr.identity.Name)
	for _, p := range partitions {
		h.Write([]byte(p.Name))
		h.Write([]byte{0, permBits(p.Perms)})
	}
	return h.Sum(nil), nil
}

func permBits(p Perms) byte {
	var b byte
	if p.Read {
		b |= 1
	}
	if p.Write {
		b |= 2
	}
	if p.Blacklist {
		b |= 4
	}
	return b
}

// derive 使用 HKDF 派生 32 字节密钥
func derive(secret []byte, salt, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, []byte(salt), []byte(info))
	out := make([]byte, sha256.Size)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return out, nil
}
