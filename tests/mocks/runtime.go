package mocks

import (
	"sync"

	"github.com/dep2p/go-dcps/internal/core/condition"
	"github.com/dep2p/go-dcps/pkg/types"
)

// MockRuntime 模拟进程级运行时
type MockRuntime struct {
	Log *CallLog

	mu      sync.Mutex
	running bool
	inits   int
	finals  int

	// 可覆盖的方法
	InitFunc  func() error
	FinalFunc func() error
}

// NewMockRuntime 创建 MockRuntime
func NewMockRuntime(log *CallLog) *MockRuntime {
	return &MockRuntime{Log: log}
}

// Init 记录调用，成功时进入运行状态
func (m *MockRuntime) Init() error {
	m.Log.Record("Init")
	if m.InitFunc != nil {
		if err := m.InitFunc(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.running = true
	m.inits++
	m.mu.Unlock()
	return nil
}

// Final 记录调用并退出运行状态
func (m *MockRuntime) Final() error {
	m.Log.Record("Final")
	m.mu.Lock()
	m.running = false
	m.finals++
	m.mu.Unlock()
	if m.FinalFunc != nil {
		return m.FinalFunc()
	}
	return nil
}

// Running 检查是否处于运行状态
func (m *MockRuntime) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Inits 返回成功 Init 次数
func (m *MockRuntime) Inits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inits
}

// Finals 返回 Final 次数
func (m *MockRuntime) Finals() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finals
}

// MockWaitRegistry 模拟延迟通知注册表
type MockWaitRegistry struct {
	Log *CallLog

	// RetireFunc 可覆盖 Retire
	RetireFunc func(owner types.InstanceHandle, c *condition.StatusCondition) bool

	// RetireCalls 调用记录
	RetireCalls []types.InstanceHandle
}

// Retire 记录调用，默认销毁条件
func (m *MockWaitRegistry) Retire(owner types.InstanceHandle, c *condition.StatusCondition) bool {
	m.Log.Record("Retire")
	m.RetireCalls = append(m.RetireCalls, owner)
	if m.RetireFunc != nil {
		return m.RetireFunc(owner, c)
	}
	c.Delete()
	return true
}
