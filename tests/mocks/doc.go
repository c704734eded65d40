// Package mocks 提供工厂协作方的测试替身
//
// 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为，并把调用记录到
// 可共享的 CallLog，便于断言销毁步骤的先后顺序。
//
// # 使用示例
//
//	log := &mocks.CallLog{}
//	b := mocks.NewMockBuiltin(log)
//	b.DeleteProtocolBindingFunc = func(*domain.Participant) error {
//	    return errors.New("transport gone")
//	}
//	f, _ := factory.New(factory.Options{Registry: reg, Builtin: b})
//	...
//	assert.Equal(t, []string{"DeleteBuiltinReaders", "DeleteProtocolBinding"}, log.Calls())
package mocks
