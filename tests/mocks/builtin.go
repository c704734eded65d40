package mocks

import (
	"github.com/dep2p/go-dcps/internal/core/domain"
)

// MockBuiltin 模拟内置实体销毁钩子，同时可作为 domain.Binder
type MockBuiltin struct {
	Log *CallLog

	// ActiveValue Active 的返回值
	ActiveValue bool

	// 可覆盖的方法
	BindFunc                  func(p *domain.Participant) error
	DeleteBuiltinReadersFunc  func(p *domain.Participant) error
	DeleteProtocolBindingFunc func(p *domain.Participant) error
}

var _ domain.Binder = (*MockBuiltin)(nil)

// NewMockBuiltin 创建协议绑定开启的 MockBuiltin
func NewMockBuiltin(log *CallLog) *MockBuiltin {
	return &MockBuiltin{Log: log, ActiveValue: true}
}

// Active 返回 ActiveValue
func (m *MockBuiltin) Active() bool {
	return m.ActiveValue
}

// Bind 记录调用
func (m *MockBuiltin) Bind(p *domain.Participant) error {
	m.Log.Record("Bind")
	if m.BindFunc != nil {
		return m.BindFunc(p)
	}
	return nil
}

// DeleteBuiltinReaders 记录调用
func (m *MockBuiltin) DeleteBuiltinReaders(p *domain.Participant) error {
	m.Log.Record("DeleteBuiltinReaders")
	if m.DeleteBuiltinReadersFunc != nil {
		return m.DeleteBuiltinReadersFunc(p)
	}
	return nil
}

// DeleteProtocolBinding 记录调用
func (m *MockBuiltin) DeleteProtocolBinding(p *domain.Participant) error {
	m.Log.Record("DeleteProtocolBinding")
	if m.DeleteProtocolBindingFunc != nil {
		return m.DeleteProtocolBindingFunc(p)
	}
	return nil
}
