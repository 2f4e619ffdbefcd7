package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "absence_bot_updates_total",
			Help: "Inbound Telegram updates by input kind.",
		},
		[]string{"kind"},
	)
	flowsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "absence_bot_flows_started_total",
			Help: "Conversation flows opened by a command.",
		},
		[]string{"flow"},
	)
	flowsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "absence_bot_flows_finished_total",
			Help: "Conversation flows closed, by outcome.",
		},
		[]string{"flow", "outcome"},
	)
	stepRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "absence_bot_step_rejections_total",
			Help: "Rejected inputs by error kind.",
		},
		[]string{"kind"},
	)
	notifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "absence_bot_notification_failures_total",
			Help: "Messages to third parties that could not be delivered.",
		},
	)
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "absence_bot_exports_total",
			Help: "Generated report files by format.",
		},
		[]string{"format"},
	)
	handlerErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "absence_bot_handler_errors_total",
			Help: "Updates that failed with an infrastructure error.",
		},
	)
	feedbackResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "absence_bot_feedback_resets_total",
			Help: "Runs of the daily feedback counter reset.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		updatesTotal,
		flowsStarted,
		flowsFinished,
		stepRejections,
		notifyFailures,
		exportsTotal,
		handlerErrors,
		feedbackResets,
	)
}

func Update(kind string) { updatesTotal.WithLabelValues(kind).Inc() }
func FlowStarted(flow string) { flowsStarted.WithLabelValues(flow).Inc() }
func FlowFinished(flow, outcome string) { flowsFinished.WithLabelValues(flow, outcome).Inc() }
func StepRejected(kind string) { stepRejections.WithLabelValues(kind).Inc() }
func NotificationFailed() { notifyFailures.Inc() }
func Exported(format string) { exportsTotal.WithLabelValues(format).Inc() }
func HandlerError() { handlerErrors.Inc() }
func FeedbackReset() { feedbackResets.Inc() }
