package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Task outcomes. skipped means the handler asked asynq not to retry.
const (
	TaskSucceeded = "succeeded"
	TaskFailed    = "failed"
	TaskSkipped   = "skipped"
)

var (
	tasksHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobportal",
			Subsystem: "worker",
			Name:      "tasks_total",
			Help:      "Background tasks by type and outcome.",
		},
		[]string{"task_type", "outcome"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobportal",
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "Background task handling time.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"task_type"},
	)

	tasksRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "jobportal",
			Subsystem: "worker",
			Name:      "tasks_in_progress",
			Help:      "Background tasks currently being handled.",
		},
		[]string{"task_type"},
	)
)

// AsynqMetricsMiddleware 记录每个任务的结果、耗时与并发数。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			running := tasksRunning.WithLabelValues(taskType)
			running.Inc()
			defer running.Dec()

			start := time.Now()
			err := next.ProcessTask(ctx, task)
			taskDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			tasksHandled.WithLabelValues(taskType, taskOutcome(err)).Inc()
			return err
		})
	}
}

func taskOutcome(err error) string {
	switch {
	case err == nil:
		return TaskSucceeded
	case errors.Is(err, asynq.SkipRetry):
		return TaskSkipped
	default:
		return TaskFailed
	}
}
