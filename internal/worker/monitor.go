package worker

import (
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
)

const MonitoringPath = "/monitoring/tasks"

// NewMonitor serves the asynqmon dashboard for the worker's queues.
func NewMonitor(redisAddr string) *asynqmon.HTTPHandler {
	return asynqmon.New(asynqmon.Options{
		RootPath:     MonitoringPath,
		RedisConnOpt: asynq.RedisClientOpt{Addr: redisAddr},
	})
}
