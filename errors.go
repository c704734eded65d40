package dcps

import (
	"errors"

	"github.com/dep2p/go-dcps/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 工厂生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 工厂未启动
	ErrNotStarted = errors.New("factory not started")

	// ErrAlreadyStarted 工厂已启动
	ErrAlreadyStarted = errors.New("factory already started")

	// ErrFactoryClosed 工厂已关闭
	ErrFactoryClosed = errors.New("factory closed")

	// ────────────────────────────────────────────────────────────────────────
	// DCPS 返回码对应的错误（转导出 pkg/types）
	// ────────────────────────────────────────────────────────────────────────

	ErrBadParameter       = types.ErrBadParameter
	ErrInconsistentPolicy = types.ErrInconsistentPolicy
	ErrPreconditionNotMet = types.ErrPreconditionNotMet
	ErrOutOfResources     = types.ErrOutOfResources
	ErrAlreadyDeleted     = types.ErrAlreadyDeleted
	ErrNotEnabled         = types.ErrNotEnabled
	ErrAccessDenied       = types.ErrAccessDenied
)
