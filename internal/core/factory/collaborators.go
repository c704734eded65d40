package factory

import (
	"github.com/dep2p/go-dcps/internal/core/condition"
	"github.com/dep2p/go-dcps/internal/core/domain"
	"github.com/dep2p/go-dcps/pkg/types"
)

// Builtin 内置实体与协议绑定的销毁钩子
type Builtin interface {
	// Active 协议绑定是否开启
	Active() bool

	// DeleteBuiltinReaders 删除参与者的内置发现读者
	DeleteBuiltinReaders(p *domain.Participant) error

	// DeleteProtocolBinding 删除协议层参与者（级联发现数据）
	DeleteProtocolBinding(p *domain.Participant) error
}

// WaitRegistry 延迟通知注册表
type WaitRegistry interface {
	// Retire 撤销 (owner, c) 的待通知并销毁条件
	Retire(owner types.InstanceHandle, c *condition.StatusCondition) bool
}

// Runtime 进程级运行时
type Runtime interface {
	Init() error
	Final() error
}

// noBuiltin 未配置内置实体时的空实现
type noBuiltin struct{}

func (noBuiltin) Active() bool                                    { return false }
func (noBuiltin) DeleteBuiltinReaders(*domain.Participant) error  { return nil }
func (noBuiltin) DeleteProtocolBinding(*domain.Participant) error { return nil }

// noWaits 未配置延迟通知注册表时的空实现
type noWaits struct{}

func (noWaits) Retire(_ types.InstanceHandle, c *condition.StatusCondition) bool {
	c.Delete()
	return false
}
