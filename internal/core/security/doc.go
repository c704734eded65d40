// Package security 实现参与者创建时的安全准入
//
// 安全子系统是运行时选择的策略对象：
//   - Disabled: 非安全模式，放行所有域，不派生令牌
//   - PolicyGatekeeper: 基于 Policy 的访问控制，派生身份令牌和权限令牌
//
// 两种模式走同一条参与者创建路径，工厂只依赖 Gatekeeper 接口。
//
// # 准入流程
//
//  1. ValidateLocalPermissions(domain, identity) 得到权限句柄
//  2. CheckCreateParticipant(perm, domain, qos) 决定是否准入及是否为安全域
//  3. 安全域下分别派生 IdentityToken / PermissionsToken，
//     任一派生失败只记录告警，不影响参与者创建
package security
