package types

// Listener 参与者监听器
//
// 按值拷贝进参与者；所有回调均为可选，nil 回调表示不关注。
type Listener struct {
	// OnDataOnReaders 参与者下任意读者有新数据
	OnDataOnReaders func(participant InstanceHandle)

	// OnStatusChanged 参与者状态变化（掩码过滤后）
	OnStatusChanged func(participant InstanceHandle, changed StatusMask)
}

// IsZero 检查监听器是否未设置任何回调
func (l Listener) IsZero() bool {
	return l.OnDataOnReaders == nil && l.OnStatusChanged == nil
}
