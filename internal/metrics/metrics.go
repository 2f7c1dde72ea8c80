// Package metrics exposes Prometheus collectors fed by lifecycle hooks.
package metrics

import (
	"context"

	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the history viewer collectors.
type Metrics struct {
	Actions          *prometheus.CounterVec
	FieldsDiffed     *prometheus.CounterVec
	TransformsFailed *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "historyviewer_selection_actions_total",
				Help: "Compare-selection actions dispatched, by action and resulting phase",
			},
			[]string{"action", "phase"},
		),
		FieldsDiffed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "historyviewer_fields_diffed_total",
				Help: "Fields rendered as a diff, by renderer",
			},
			[]string{"renderer"},
		),
		TransformsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "historyviewer_transforms_failed_total",
				Help: "Diff transforms aborted, by reason",
			},
			[]string{"reason"},
		),
	}
	reg.MustRegister(m.Actions, m.FieldsDiffed, m.TransformsFailed)
	return m
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAction: func(_ context.Context, e *domain.ActionEvent) {
			m.Actions.WithLabelValues(string(e.Action), string(e.Selection.Phase())).Inc()
		},
		OnFieldDiffed: func(_ context.Context, e *domain.FieldEvent) {
			renderer := "generic"
			switch {
			case e.Placed:
				renderer = "placeholder"
			case e.Custom:
				renderer = "custom"
			}
			m.FieldsDiffed.WithLabelValues(renderer).Inc()
		},
		OnTransformFailed: func(_ context.Context, e *domain.TransformEvent) {
			m.TransformsFailed.WithLabelValues(Reason(e.Err)).Inc()
		},
	}
}
