package types

import (
	"encoding/hex"
	"fmt"
)

// ============================================================================
//                              DomainID - 域标识
// ============================================================================

// DomainID 域标识
//
// 同一 DomainID 内的参与者可以互相发现，不同域之间完全隔离。
type DomainID uint32

// MaxDomainID 允许的最大域 ID
//
// RTPS 端口映射公式（PB + DG*domain）决定了域 ID 的上限。
const MaxDomainID DomainID = 232

// Valid 检查域 ID 是否在合法范围内
func (d DomainID) Valid() bool {
	return d <= MaxDomainID
}

// String 返回域 ID 的字符串表示
func (d DomainID) String() string {
	return fmt.Sprintf("domain-%d", uint32(d))
}

// ============================================================================
//                              InstanceHandle - 实体句柄
// ============================================================================

// InstanceHandle 本地实体句柄
//
// 0 表示无效句柄（HANDLE_NIL）。
type InstanceHandle uint64

// HandleNil 无效句柄
const HandleNil InstanceHandle = 0

// IsNil 检查句柄是否无效
func (h InstanceHandle) IsNil() bool {
	return h == HandleNil
}

// ============================================================================
//                              GUIDPrefix - 参与者 GUID 前缀
// ============================================================================

// GUIDPrefix 参与者 GUID 前缀（12 字节）
type GUIDPrefix [12]byte

// String 返回 GUID 前缀的十六进制表示
func (g GUIDPrefix) String() string {
	return hex.EncodeToString(g[:])
}

// IsZero 检查 GUID 前缀是否为零值
func (g GUIDPrefix) IsZero() bool {
	return g == GUIDPrefix{}
}
