package ledger

import (
	"fmt"
	"sync"
)

// ============================================================================
//                              String 共享字符串
// ============================================================================

// String 引用计数的不可变字节串
type String struct {
	ledger *Ledger
	data   string
	refs   int
}

// Bytes 返回内容的拷贝
func (s *String) Bytes() []byte {
	if s == nil {
		return nil
	}
	return []byte(s.data)
}

// String 返回内容
func (s *String) String() string {
	if s == nil {
		return ""
	}
	return s.data
}

// Len 返回内容长度
func (s *String) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// Refs 返回当前引用计数
func (s *String) Refs() int {
	if s == nil {
		return 0
	}
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()
	return s.refs
}

// Ref 增加一个引用并返回自身
func (s *String) Ref() *String {
	if s == nil {
		return nil
	}
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()
	if s.refs <= 0 {
		panic(fmt.Sprintf("ledger: ref of released string %q", s.data))
	}
	s.refs++
	return s
}

// ============================================================================
//                              Ledger 账本
// ============================================================================

// Ledger 共享字符串账本
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*String
}

// New 创建账本
func New() *Ledger {
	return &Ledger{
		entries: make(map[string]*String),
	}
}

// Intern 登记字节串并返回持有一个引用的 *String
//
// 空输入返回 nil（表示缺省）。相同内容复用已有条目。
func (l *Ledger) Intern(b []byte) *String {
	if len(b) == 0 {
		return nil
	}
	return l.intern(string(b))
}

// InternString 登记字符串
func (l *Ledger) InternString(s string) *String {
	if s == "" {
		return nil
	}
	return l.intern(s)
}

func (l *Ledger) intern(key string) *String {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.entries[key]; ok {
		s.refs++
		return s
	}
	s := &String{ledger: l, data: key, refs: 1}
	l.entries[key] = s
	return s
}

// Release 释放一个引用
//
// 返回 true 表示这是最后一个引用，条目已离开账本。
func (l *Ledger) Release(s *String) bool {
	if s == nil {
		return false
	}
	if s.ledger != l {
		panic("ledger: release of string owned by another ledger")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if s.refs <= 0 {
		panic(fmt.Sprintf("ledger: double release of %q", s.data))
	}
	s.refs--
	if s.refs > 0 {
		return false
	}
	if cur, ok := l.entries[s.data]; ok && cur == s {
		delete(l.entries, s.data)
	}
	return true
}

// Live 返回账本中仍存活的条目数
func (l *Ledger) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
