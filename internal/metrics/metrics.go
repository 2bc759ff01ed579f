// Package metrics содержит счетчики Prometheus витрины и API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Источники уведомлений о смене сессии
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

var (
	SessionNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopoholic_session_notifications_total",
		Help: "Number of session change notifications fanned out, by source",
	}, []string{"source"})

	ListenerPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopoholic_session_listener_panics_total",
		Help: "Number of session listeners that panicked during delivery",
	})

	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopoholic_guard_decisions_total",
		Help: "Number of route guard decisions, by outcome",
	}, []string{"outcome"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopoholic_login_attempts_total",
		Help: "Number of login attempts, by result",
	}, []string{"result"})

	ForcedLogouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopoholic_forced_logouts_total",
		Help: "Number of sessions cleared after the backend rejected the token",
	})

	ActiveSessionStores = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shopoholic_session_stores_active",
		Help: "Number of browser session stores currently held by this process",
	})

	LiveTabs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shopoholic_live_tabs",
		Help: "Number of open session event websocket connections",
	})
)
