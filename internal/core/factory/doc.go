// Package factory 实现参与者工厂：创建、删除、查找参与者，以及工厂级默认 QoS
//
// # 创建
//
//  1. 首个参与者（含进行中的创建）触发运行时初始化
//  2. 解析 QoS：哨兵值取调用时刻的工厂默认值，否则校验
//  3. 安全准入，拒绝时不分配任何资源
//  4. 注册表分配已加锁的记录
//  5. 填充记录；令牌派生失败只告警
//  6. 存活计数加一
//  7. 释放记录锁
//  8. 工厂级自动启用开启时启用参与者
//
// # 删除
//
// 严格按序：关闭域 → 取参与者锁 → 检查子实体 → 删内置读者 → 删协议绑定 →
// 撤销并销毁状态条件 → 释放令牌 → 释放用户数据与实体名 → 摘除 →
// 释放中继表 → 释放记录 → 存活计数减一（归零时终结运行时）。
//
// 关闭域在前置条件检查之前进行且不可撤销：因仍有子实体而失败的删除
// 会让该域对新的 Lookup 不可见，但参与者本身完好，排空子实体后可以
// 再次删除。
package factory
