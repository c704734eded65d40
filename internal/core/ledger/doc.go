// Package ledger 实现引用计数的共享字符串
//
// 参与者持有的用户数据、实体名称、身份令牌、权限令牌都是不可变字节串，
// 相同内容在进程内只保存一份，通过引用计数管理生命周期。
//
// # 所有权规则
//
//   - Intern/InternString 返回的 *String 持有一个引用
//   - Ref 增加一个引用，每个引用都必须恰好 Release 一次
//   - 引用计数归零时条目离开账本，之后再 Release 会 panic
//
// nil *String 表示"缺省"，对其 Release 是空操作。
package ledger
