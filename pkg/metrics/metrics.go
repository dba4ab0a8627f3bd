// Package metrics: Prometheus метрики сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках передается nil.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics коллекторы сервиса
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec
	dbOpenConns     prometheus.Gauge
	dbInUseConns    prometheus.Gauge
	dbIdleConns     prometheus.Gauge

	conflictDecisions *prometheus.CounterVec
	abuseVerdicts     *prometheus.CounterVec
	linkReconciles    *prometheus.CounterVec
	notifications     *prometheus.CounterVec
}

// New создает метрики и регистрирует их в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики в указанном реестре (для тестов)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Количество HTTP запросов",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Длительность обработки HTTP запросов",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Длительность запросов к БД",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		dbQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Количество ошибок запросов к БД",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		dbOpenConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Открытые соединения с БД",
			ConstLabels: constLabels,
		}),
		dbInUseConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Используемые соединения с БД",
			ConstLabels: constLabels,
		}),
		dbIdleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Простаивающие соединения с БД",
			ConstLabels: constLabels,
		}),
		conflictDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservation_conflict_decisions_total",
			Help:        "Решения проверки конфликтов по операциям",
			ConstLabels: constLabels,
		}, []string{"operation", "level"}),
		abuseVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "abuse_guard_verdicts_total",
			Help:        "Вердикты защиты от злоупотреблений",
			ConstLabels: constLabels,
		}, []string{"verdict"}),
		linkReconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "conflict_link_reconciliations_total",
			Help:        "Попытки применения связей конфликтов",
			ConstLabels: constLabels,
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_published_total",
			Help:        "Опубликованные уведомления",
			ConstLabels: constLabels,
		}, []string{"channel", "result"}),
	}

	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.dbQueryDuration, m.dbQueryErrors, m.dbOpenConns, m.dbInUseConns, m.dbIdleConns,
		m.conflictDecisions, m.abuseVerdicts, m.linkReconciles, m.notifications,
	)
	return m
}

// ObserveHTTP фиксирует HTTP запрос
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveQuery фиксирует запрос к БД
func (m *Metrics) ObserveQuery(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetPoolStats обновляет показатели пула соединений
func (m *Metrics) SetPoolStats(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.dbOpenConns.Set(float64(open))
	m.dbInUseConns.Set(float64(inUse))
	m.dbIdleConns.Set(float64(idle))
}

// ObserveConflict фиксирует уровень конфликта (none, warning, block) для операции
func (m *Metrics) ObserveConflict(operation, level string) {
	if m == nil {
		return
	}
	if level == "" {
		level = "none"
	}
	m.conflictDecisions.WithLabelValues(operation, level).Inc()
}

// ObserveAbuseVerdict фиксирует вердикт защиты (allowed, banned, rate_limited, suspicious, bypass)
func (m *Metrics) ObserveAbuseVerdict(verdict string) {
	if m == nil {
		return
	}
	m.abuseVerdicts.WithLabelValues(verdict).Inc()
}

// ObserveLinkReconcile фиксирует результат применения связей (ok, retry, gave_up)
func (m *Metrics) ObserveLinkReconcile(result string) {
	if m == nil {
		return
	}
	m.linkReconciles.WithLabelValues(result).Inc()
}

// ObserveNotification фиксирует публикацию уведомления
func (m *Metrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(channel, result).Inc()
}
