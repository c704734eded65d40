package condition

import "errors"

var (
	// ErrConditionDeleted 条件已销毁
	ErrConditionDeleted = errors.New("condition: deleted")

	// ErrNotAttached 条件未挂接到等待集
	ErrNotAttached = errors.New("condition: not attached")

	// ErrDispatcherRunning 刷新协程已在运行
	ErrDispatcherRunning = errors.New("condition: dispatcher already running")
)
