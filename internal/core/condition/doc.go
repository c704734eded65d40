// Package condition 实现状态条件、等待集与延迟通知注册表
//
// 实体状态变化时先把条件放进 Dispatcher 的延迟队列，由 Flush（或后台
// 刷新协程）统一唤醒挂接的 WaitSet。这样触发方在持有实体锁时不会直接
// 回调等待方。
//
// 条件销毁前必须先从 Dispatcher 撤销，否则刷新时会访问已销毁的条件。
// Retire 把撤销与销毁放在同一临界区，与并发的 Defer 互斥。
package condition
