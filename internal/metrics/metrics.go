package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "muzz"

var (
	MessagesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "messages_appended_total",
		Help:      "Messages appended to an open conversation history.",
	})

	MessagesDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "messages_duplicate_total",
		Help:      "Deliveries dropped because the message id was already in history.",
	})

	MessagesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "messages_discarded_total",
		Help:      "Deliveries that arrived after the conversation was closed.",
	})

	SubscriptionsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "subscriptions_dropped_total",
		Help:      "Live subscriptions that stopped without being closed.",
	})

	Judgments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "match",
		Name:      "judgments_total",
		Help:      "Recorded judgments by kind (like, dislike, duplicate).",
	}, []string{"kind"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
