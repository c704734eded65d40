// Package builtin 管理参与者的内置发现读者与协议层绑定
//
// 启用参与者时由 Bind 创建内置读者，协议绑定开启时同时注册协议层
// 参与者。删除参与者时工厂先调用 DeleteBuiltinReaders，再（仅当参与者
// 已启用且绑定开启时）调用 DeleteProtocolBinding，后者级联清理该参与者
// 发现的远端参与者数据。
package builtin

import (
	"sort"
	"sync"

	"github.com/dep2p/go-dcps/internal/core/domain"
	"github.com/dep2p/go-dcps/pkg/lib/log"
	"github.com/dep2p/go-dcps/pkg/types"
)

var logger = log.Logger("core/builtin")

// 内置读者主题名
const (
	TopicParticipant  = "DCPSParticipant"
	TopicPublication  = "DCPSPublication"
	TopicSubscription = "DCPSSubscription"
)

// builtinTopics 每个参与者创建的内置读者
var builtinTopics = []string{TopicParticipant, TopicPublication, TopicSubscription}

// binding 协议层参与者
type binding struct {
	domain     types.DomainID
	guid       types.GUIDPrefix
	discovered map[types.GUIDPrefix]struct{}
}

// Service 内置实体与协议绑定服务
type Service struct {
	active bool

	mu       sync.Mutex
	readers  map[types.InstanceHandle][]string
	bindings map[types.InstanceHandle]*binding
}

var _ domain.Binder = (*Service)(nil)

// NewService 创建服务，active 表示协议绑定是否开启
func NewService(active bool) *Service {
	return &Service{
		active:   active,
		readers:  make(map[types.InstanceHandle][]string),
		bindings: make(map[types.InstanceHandle]*binding),
	}
}

// Active 检查协议绑定是否开启
func (s *Service) Active() bool {
	return s.active
}

// Bind 为参与者创建内置读者，绑定开启时注册协议层参与者
//
// 在参与者锁内调用，只读取参与者的不可变字段。重复调用无操作。
func (s *Service) Bind(p *domain.Participant) error {
	h := p.Handle()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.readers[h]; !ok {
		s.readers[h] = append([]string(nil), builtinTopics...)
	}
	if s.active {
		if _, ok := s.bindings[h]; !ok {
			s.bindings[h] = &binding{
				domain:     p.Domain(),
				guid:       p.GUIDPrefix(),
				discovered: make(map[types.GUIDPrefix]struct{}),
			}
			logger.Debug("协议层参与者已注册", "domain", p.Domain(), "guid", p.GUIDPrefix())
		}
	}
	return nil
}

// NoteDiscovered 记录参与者发现的远端参与者，未绑定时返回 false
func (s *Service) NoteDiscovered(h types.InstanceHandle, remote types.GUIDPrefix) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bindings[h]
	if !ok {
		return false
	}
	b.discovered[remote] = struct{}{}
	return true
}

// Discovered 返回参与者已发现的远端参与者数
func (s *Service) Discovered(h types.InstanceHandle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bindings[h]; ok {
		return len(b.discovered)
	}
	return 0
}

// DeleteBuiltinReaders 删除参与者的内置读者，不存在时无操作
func (s *Service) DeleteBuiltinReaders(p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.readers, p.Handle())
	return nil
}

// DeleteProtocolBinding 删除协议层参与者并级联清理发现数据，不存在时无操作
func (s *Service) DeleteProtocolBinding(p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bindings[p.Handle()]
	if !ok {
		return nil
	}
	if n := len(b.discovered); n > 0 {
		logger.Debug("清理发现数据", "domain", b.domain, "remotes", n)
	}
	delete(s.bindings, p.Handle())
	return nil
}

// HasReaders 检查参与者是否有内置读者
func (s *Service) HasReaders(h types.InstanceHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.readers[h]
	return ok
}

// Readers 返回参与者的内置读者主题（排序）
func (s *Service) Readers(h types.InstanceHandle) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.readers[h]...)
	sort.Strings(out)
	return out
}

// HasBinding 检查参与者是否有协议层绑定
func (s *Service) HasBinding(h types.InstanceHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.bindings[h]
	return ok
}
