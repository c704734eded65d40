package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 结果标签值
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics 参与者生命周期指标
type Metrics struct {
	LiveParticipants  prometheus.Gauge
	ParticipantCreate *prometheus.CounterVec
	ParticipantDelete *prometheus.CounterVec
	AdmissionDenied   prometheus.Counter
	TokenFailures     *prometheus.CounterVec
	RuntimeInits      prometheus.Counter
	TeardownErrors    prometheus.Counter
}

// New 在 reg 上注册指标
func New(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LiveParticipants: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "participants_live",
			Help:      "Current number of live domain participants",
		}),
		ParticipantCreate: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participant_create_total",
			Help:      "Participant create calls by result code",
		}, []string{"result"}),
		ParticipantDelete: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participant_delete_total",
			Help:      "Participant delete calls by result code",
		}, []string{"result"}),
		AdmissionDenied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "security_admission_denied_total",
			Help:      "Participant creations refused by the security gatekeeper",
		}),
		TokenFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "security_token_failures_total",
			Help:      "Token derivation failures tolerated during secure creation",
		}, []string{"token"}),
		RuntimeInits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runtime_inits_total",
			Help:      "Number of lazy runtime initializations",
		}),
		TeardownErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participant_teardown_errors_total",
			Help:      "Collaborator errors observed while tearing down participants",
		}),
	}
}

// ObserveCreate 记录一次创建结果
func (m *Metrics) ObserveCreate(result string) {
	if m == nil {
		return
	}
	m.ParticipantCreate.WithLabelValues(result).Inc()
}

// ObserveDelete 记录一次删除结果
func (m *Metrics) ObserveDelete(result string) {
	if m == nil {
		return
	}
	m.ParticipantDelete.WithLabelValues(result).Inc()
}

// SetLive 设置存活参与者数
func (m *Metrics) SetLive(n int) {
	if m == nil {
		return
	}
	m.LiveParticipants.Set(float64(n))
}

// IncAdmissionDenied 记录一次准入拒绝
func (m *Metrics) IncAdmissionDenied() {
	if m == nil {
		return
	}
	m.AdmissionDenied.Inc()
}

// IncTokenFailure 记录一次令牌派生失败，token 为 "identity" 或 "permissions"
func (m *Metrics) IncTokenFailure(token string) {
	if m == nil {
		return
	}
	m.TokenFailures.WithLabelValues(token).Inc()
}

// IncRuntimeInit 记录一次运行时初始化
func (m *Metrics) IncRuntimeInit() {
	if m == nil {
		return
	}
	m.RuntimeInits.Inc()
}

// IncTeardownError 记录一次销毁阶段错误
func (m *Metrics) IncTeardownError() {
	if m == nil {
		return
	}
	m.TeardownErrors.Inc()
}
