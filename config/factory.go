package config

import (
	"errors"

	"github.com/dep2p/go-dcps/internal/core/qos"
)

// FactoryConfig 参与者工厂配置
type FactoryConfig struct {
	// AutoEnable 新建参与者是否自动启用（工厂级 entity-factory 策略初值）
	AutoEnable bool `json:"auto_enable" toml:"auto_enable" env:"DCPS_FACTORY_AUTO_ENABLE"`

	// EntityName 进程级实体名，非空时写入每个参与者
	EntityName string `json:"entity_name,omitempty" toml:"entity_name" env:"DCPS_ENTITY_NAME"`

	// MaxParticipants 进程内参与者上限，0 表示不限制
	MaxParticipants int `json:"max_participants" toml:"max_participants" env:"DCPS_MAX_PARTICIPANTS"`

	// MaxUserDataSize 参与者用户数据上限（字节）
	MaxUserDataSize int `json:"max_user_data_size" toml:"max_user_data_size" env:"DCPS_MAX_USER_DATA_SIZE"`
}

// DefaultFactoryConfig 返回默认工厂配置
func DefaultFactoryConfig() FactoryConfig {
	return FactoryConfig{
		AutoEnable:      true,                       // 自动启用：与 DDS 默认工厂 QoS 一致
		MaxParticipants: 0,                          // 不限制：每个域最多一个参与者
		MaxUserDataSize: qos.DefaultMaxUserDataSize, // 用户数据上限：4 KiB
	}
}

// Validate 验证工厂配置
func (c FactoryConfig) Validate() error {
	if c.MaxParticipants < 0 {
		return errors.New("factory: max_participants must be >= 0")
	}
	if c.MaxUserDataSize <= 0 {
		return errors.New("factory: max_user_data_size must be > 0")
	}
	return nil
}
