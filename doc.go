// Package dcps 提供 DDS 域参与者的进程级工厂
//
// go-dcps 实现 DCPS（Data-Centric Publish-Subscribe）中参与者生命周期的核心：
// 在指定域上创建、查找、删除参与者，并维护工厂级默认 QoS。
//
// # 核心概念
//
//   - Factory: 参与者工厂，进程内的主入口
//   - Participant: 域参与者，是发布者、订阅者等子实体的容器
//   - Domain: 以 DomainID 区分的通信域，每个域最多一个本地参与者
//
// # 快速开始
//
//	import "github.com/dep2p/go-dcps"
//
//	// 1. 创建并启动工厂
//	f, err := dcps.Start(ctx, dcps.WithConfigFile("dcps.toml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	// 2. 在域 0 上创建参与者（使用工厂默认 QoS）
//	p, err := f.CreateParticipant(0, dcps.ParticipantQosDefault, nil, dcps.StatusMaskNone)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// 3. 删除参与者（必须先删除其子实体）
//	if err := f.DeleteParticipant(p); err != nil {
//	    log.Println(dcps.ReturnCodeOf(err))
//	}
//
// # 进程级单例
//
// Instance() 返回按默认配置懒创建并启动的进程级工厂，对应 DCPS 中
// 的 get_instance 语义。需要自定义配置时使用 New()/Start()。
//
// # 模块组装
//
//	┌────────────────────────────────────────────────────────────┐
//	│  dcps.Factory（本包）                                       │
//	├────────────────────────────────────────────────────────────┤
//	│  factory   参与者创建/删除、默认 QoS、运行时引用计数        │
//	├──────────────┬──────────────┬──────────────┬───────────────┤
//	│  domain      │  security    │  builtin     │  metrics      │
//	│  注册表/记录 │  安全准入    │  内置实体    │  prometheus   │
//	├──────────────┴──────┬───────┴──────────────┴───────────────┤
//	│  condition          │  runtime           │  ledger          │
//	│  延迟通知分发       │  进程级运行时      │  引用计数字符串  │
//	└─────────────────────┴────────────────────┴──────────────────┘
//
// # 错误处理
//
// 所有操作返回 Go error；ReturnCodeOf 将其映射为 DCPS 返回码
// （BAD_PARAMETER、PRECONDITION_NOT_MET、ALREADY_DELETED 等）。
package dcps
