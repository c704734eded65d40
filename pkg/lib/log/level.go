package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	envLogLevel  = "DCPS_LOG_LEVEL"
	envLogFormat = "DCPS_LOG_FORMAT"
)

// levelTable 组件级别表
type levelTable struct {
	defaultLevel slog.Level
	components   map[string]slog.Level
}

var (
	levelsMu   sync.RWMutex
	levels     *levelTable
	levelsOnce sync.Once
)

func loadLevels() {
	levelsOnce.Do(func() {
		t := ParseLevels(os.Getenv(envLogLevel))
		levelsMu.Lock()
		if levels == nil {
			levels = t
		}
		levelsMu.Unlock()
	})
}

// LevelFor 返回组件的生效级别
//
// 组件名按 "/" 分段逐级回退：core/factory 未配置时查找 core，
// 仍未配置则使用默认级别。
func LevelFor(component string) slog.Level {
	loadLevels()

	levelsMu.RLock()
	defer levelsMu.RUnlock()

	name := component
	for {
		if lvl, ok := levels.components[name]; ok {
			return lvl
		}
		idx := strings.LastIndex(name, "/")
		if idx < 0 {
			return levels.defaultLevel
		}
		name = name[:idx]
	}
}

// SetLevel 动态设置组件级别
//
// component 为空时设置默认级别。
func SetLevel(component string, level slog.Level) {
	loadLevels()

	levelsMu.Lock()
	defer levelsMu.Unlock()
	if component == "" {
		levels.defaultLevel = level
		return
	}
	levels.components[component] = level
}

// ParseLevels 解析级别配置字符串
//
// 格式: component=level,component=level,defaultLevel
// 示例: core/factory=debug,core/security=warn,info
func ParseLevels(s string) *levelTable {
	t := &levelTable{
		defaultLevel: slog.LevelInfo,
		components:   make(map[string]slog.Level),
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, lvl, found := strings.Cut(part, "="); found {
			if level, ok := ParseLevel(lvl); ok {
				t.components[strings.TrimSpace(name)] = level
			}
			continue
		}
		if level, ok := ParseLevel(part); ok {
			t.defaultLevel = level
		}
	}
	return t
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
