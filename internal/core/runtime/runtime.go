// Package runtime 提供进程级运行时的惰性初始化与终结
//
// 首个参与者创建时 Init，最后一个参与者删除时 Final。两者严格对称：
// N 次创建后 N 次删除，运行时回到初始化前的状态，下一次 Init 会重新
// 执行全部初始化钩子并递增 Generation。
package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-dcps/pkg/lib/log"
)

var logger = log.Logger("core/runtime")

// ErrNotRunning 运行时未初始化
var ErrNotRunning = errors.New("runtime: not running")

// ============================================================================
//                              阶段定义
// ============================================================================

// Phase 运行时阶段
type Phase int

const (
	// PhaseIdle 未初始化
	PhaseIdle Phase = iota

	// PhaseStarting 正在执行初始化钩子
	PhaseStarting

	// PhaseRunning 已初始化
	PhaseRunning

	// PhaseStopping 正在执行终结钩子
	PhaseStopping
)

// String 返回阶段字符串表示
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	case PhaseStopping:
		return "stopping"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// Hook 成对的初始化/终结钩子
type Hook struct {
	// Name 钩子名称，用于日志
	Name string

	// OnInit 初始化时调用
	OnInit func() error

	// OnFinal 终结时调用（逆序）
	OnFinal func() error
}

// ============================================================================
//                              Runtime
// ============================================================================

// Runtime 进程级运行时
type Runtime struct {
	mu sync.Mutex

	phase      Phase
	generation uint64
	hooks      []Hook

	// running 在进入 PhaseRunning 时关闭，终结后重建
	running chan struct{}

	onPhaseChange []func(old, new Phase)
}

// New 创建运行时
func New() *Runtime {
	return &Runtime{
		phase:   PhaseIdle,
		running: make(chan struct{}),
	}
}

// Append 注册钩子，只影响之后的 Init
func (r *Runtime) Append(h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, h)
}

// OnPhaseChange 注册阶段变更回调（同步调用，不得回调 Runtime）
func (r *Runtime) OnPhaseChange(fn func(old, new Phase)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onPhaseChange = append(r.onPhaseChange, fn)
}

// Phase 返回当前阶段
func (r *Runtime) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Running 检查是否已初始化
func (r *Runtime) Running() bool {
	return r.Phase() == PhaseRunning
}

// Generation 返回初始化次数
func (r *Runtime) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Init 初始化运行时
//
// 已初始化时无操作。任一钩子失败时逆序终结已成功的钩子并回到 PhaseIdle。
func (r *Runtime) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhaseRunning {
		return nil
	}

	r.setPhase(PhaseStarting)
	for i, h := range r.hooks {
		if h.OnInit == nil {
			continue
		}
		if err := h.OnInit(); err != nil {
			rollback := r.finalize(r.hooks[:i])
			r.setPhase(PhaseIdle)
			logger.Error("运行时初始化失败", "hook", h.Name, "error", err)
			return multierr.Append(fmt.Errorf("runtime init %s: %w", h.Name, err), rollback)
		}
	}

	r.generation++
	r.setPhase(PhaseRunning)
	close(r.running)

	logger.Info("运行时已初始化", "generation", r.generation, "hooks", len(r.hooks))
	return nil
}

// Final 终结运行时
//
// 未初始化时返回 ErrNotRunning。钩子错误被合并返回，但终结总会完成。
func (r *Runtime) Final() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseRunning {
		return ErrNotRunning
	}

	r.setPhase(PhaseStopping)
	err := r.finalize(r.hooks)
	r.running = make(chan struct{})
	r.setPhase(PhaseIdle)

	if err != nil {
		logger.Warn("运行时终结出现错误", "generation", r.generation, "error", err)
	} else {
		logger.Info("运行时已终结", "generation", r.generation)
	}
	return err
}

// WaitRunning 阻塞直到运行时进入 PhaseRunning 或 ctx 结束
func (r *Runtime) WaitRunning(ctx context.Context) error {
	r.mu.Lock()
	ch := r.running
	r.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finalize 逆序执行终结钩子，调用方持有锁
func (r *Runtime) finalize(hooks []Hook) error {
	var errs error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if h.OnFinal == nil {
			continue
		}
		if err := h.OnFinal(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("runtime final %s: %w", h.Name, err))
		}
	}
	return errs
}

// setPhase 切换阶段，调用方持有锁
func (r *Runtime) setPhase(p Phase) {
	old := r.phase
	r.phase = p
	for _, cb := range r.onPhaseChange {
		cb(old, p)
	}
}
