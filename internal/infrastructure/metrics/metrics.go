package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RotationMetrics содержит все метрики ротации креативов
type RotationMetrics struct {
	// Счетчики переключений
	RotationsTotal         prometheus.CounterVec
	SessionsCompletedTotal prometheus.CounterVec
	SessionsStartedTotal   prometheus.CounterVec

	// Пропущенные тики
	TicksSkippedTotal prometheus.CounterVec

	// Ошибки внешнего API
	ProviderErrorsTotal    prometheus.CounterVec
	RateLimitRetriesTotal  prometheus.CounterVec
	ConflictsObservedTotal prometheus.CounterVec

	// Пополнения бюджета
	TopUpsTotal      prometheus.CounterVec
	TopUpAmountTotal prometheus.CounterVec

	// Время обхода
	SweepDuration prometheus.HistogramVec
}

// NewRotationMetrics создает новый экземпляр метрик
func NewRotationMetrics() *RotationMetrics {
	return &RotationMetrics{
		RotationsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rotations_total",
				Help: "Общее количество переключений креативов",
			},
			[]string{"account_id"},
		),

		SessionsCompletedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rotation_sessions_completed_total",
				Help: "Общее количество завершенных сессий",
			},
			[]string{"account_id"},
		),

		SessionsStartedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rotation_sessions_started_total",
				Help: "Общее количество запущенных сессий",
			},
			[]string{"account_id"},
		),

		TicksSkippedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rotation_ticks_skipped_total",
				Help: "Количество тиков, пропущенных из-за ошибок провайдера",
			},
			[]string{"account_id", "reason"},
		),

		ProviderErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rotation_provider_errors_total",
				Help: "Ошибки внешнего API по классам",
			},
			[]string{"error_type"},
		),

		RateLimitRetriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rotation_rate_limit_retries_total",
				Help: "Количество повторов из-за rate limiting",
			},
			[]string{"account_id"},
		),

		ConflictsObservedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rotation_conflicts_observed_total",
				Help: "Проигравшие конкурентные попытки ротации",
			},
			[]string{"account_id"},
		),

		TopUpsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rotation_top_ups_total",
				Help: "Количество автопополнений бюджета",
			},
			[]string{"account_id"},
		),

		TopUpAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rotation_top_up_amount_total",
				Help: "Общая сумма автопополнений бюджета",
			},
			[]string{"account_id"},
		),

		SweepDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rotation_sweep_duration_seconds",
				Help:    "Время полного обхода активных сессий в секундах",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s, 2s, 4s, 8s...
			},
			[]string{"sweep"},
		),
	}
}

// RecordRotation записывает успешное переключение
func (m *RotationMetrics) RecordRotation(accountID string) {
	m.RotationsTotal.WithLabelValues(accountID).Inc()
}

// RecordSessionStarted записывает запуск сессии
func (m *RotationMetrics) RecordSessionStarted(accountID string) {
	m.SessionsStartedTotal.WithLabelValues(accountID).Inc()
}

// RecordSessionCompleted записывает завершение сессии
func (m *RotationMetrics) RecordSessionCompleted(accountID string) {
	m.SessionsCompletedTotal.WithLabelValues(accountID).Inc()
}

// RecordTickSkipped записывает пропущенный тик
func (m *RotationMetrics) RecordTickSkipped(accountID, reason string) {
	m.TicksSkippedTotal.WithLabelValues(accountID, reason).Inc()
}

// RecordProviderError записывает ошибку провайдера
func (m *RotationMetrics) RecordRateLimitRetry(accountID string) {
	m.RateLimitRetriesTotal.WithLabelValues(accountID).Inc()
}

func (m *RotationMetrics) RecordProviderError(errorType string) {
	m.ProviderErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordConflict записывает проигранную конкурентную попытку
func (m *RotationMetrics) RecordConflict(accountID string) {
	m.ConflictsObservedTotal.WithLabelValues(accountID).Inc()
}

// RecordTopUp записывает автопополнение бюджета
func (m *RotationMetrics) RecordTopUp(accountID string, amount float64) {
	m.TopUpsTotal.WithLabelValues(accountID).Inc()
	m.TopUpAmountTotal.WithLabelValues(accountID).Add(amount)
}

// RecordSweepDuration записывает время обхода
func (m *RotationMetrics) RecordSweepDuration(sweep string, durationSeconds float64) {
	m.SweepDuration.WithLabelValues(sweep).Observe(durationSeconds)
}
