package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	playSessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "funnel_play_sessions_started_total",
		Help: "Total number of started funnel play sessions.",
	})

	answersAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "funnel_answers_accepted_total",
		Help: "Total number of accepted answers.",
	})

	answersRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_answers_rejected_total",
			Help: "Total number of rejected answers by reason.",
		},
		[]string{"reason"},
	)

	redirectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "funnel_redirects_total",
		Help: "Total number of completed funnels that ended with a redirect.",
	})

	completionsWithoutRedirectTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "funnel_completions_without_redirect_total",
		Help: "Total number of completed funnels with fewer than the full set of questions.",
	})
)
