// Package observability provides application metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal counts registration attempts by result.
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_registrations_total",
		Help: "Total number of registration attempts by result",
	}, []string{"result"})

	// LoginsTotal counts login attempts by result.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_logins_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})

	// PostMutationsTotal counts post mutations by action.
	PostMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_post_mutations_total",
		Help: "Total number of post mutations by action",
	}, []string{"action"})
)
