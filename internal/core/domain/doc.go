// Package domain 实现参与者记录与按域索引的注册表
//
// 每个域最多挂接一个参与者。注册表自身的锁只覆盖映射操作；每个参与者
// 另有自己的锁，构造与销毁窗口内由 Locked 守卫独占持有。
//
// # 锁顺序
//
// 参与者锁 → 注册表锁。注册表持锁期间不会等待任何参与者锁
// （Create 只锁刚分配、尚不可见的记录）。
//
// # 单向关闭
//
// Close(domain) 之后，Lookup 对该域返回 nil，新的子实体创建失败；
// 即使随后的删除因前置条件失败而中止，关闭也不会撤销。已持有的
// 参与者指针仍然可用。
package domain
