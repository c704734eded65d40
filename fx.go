package dcps

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-dcps/config"
	"github.com/dep2p/go-dcps/internal/core/builtin"
	"github.com/dep2p/go-dcps/internal/core/condition"
	"github.com/dep2p/go-dcps/internal/core/domain"
	"github.com/dep2p/go-dcps/internal/core/factory"
	"github.com/dep2p/go-dcps/internal/core/ledger"
	"github.com/dep2p/go-dcps/internal/core/metrics"
	"github.com/dep2p/go-dcps/internal/core/runtime"
	"github.com/dep2p/go-dcps/internal/core/security"
	"github.com/dep2p/go-dcps/pkg/lib/log"
)

var fxLogger = log.Logger("dcps/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 基础: ledger → condition → runtime
//  2. 准入与绑定: security → builtin
//  3. 注册表与工厂: domain → metrics → factory
func buildFxApp(cfg *config.Config, o *options, f *Factory) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置注入
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg),
	}
	if reg := o.registerer; reg != nil {
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}
	if clk := o.clock; clk != nil {
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		ledger.Module(),
		condition.Module(),
		runtime.Module(),
		security.Module(),
		builtin.Module(),
		domain.Module(),
		metrics.Module(),
		factory.Module(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 用户自定义选项
	// ════════════════════════════════════════════════════════════════════════
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Populate(&f.core, &f.runtime))

	// ════════════════════════════════════════════════════════════════════════
	// 5. Fx 日志
	// ════════════════════════════════════════════════════════════════════════
	debug := cfg.Log.Debug
	modules = append(modules, fx.WithLogger(func() fxevent.Logger {
		if debug {
			if zl, err := zap.NewDevelopment(); err == nil {
				return &fxevent.ZapLogger{Logger: zl.Named("fx")}
			}
		}
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}))

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		fxLogger.Error("依赖注入失败", "error", err)
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return app, nil
}

// applyLogging 按配置设置默认日志级别
func applyLogging(cfg config.LogConfig) {
	if cfg.Debug {
		log.SetLevel("", log.LevelDebug)
		return
	}
	if lvl, ok := log.ParseLevel(cfg.Level); ok {
		log.SetLevel("", lvl)
	}
}
