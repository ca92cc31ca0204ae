package main

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// submittedJob wraps one inbound /submit request as a pool.Job. Real
// payload handling is left to the caller's domain; this demo job only
// simulates work for the requested duration and logs that it ran.
type submittedJob struct {
	shard   string
	payload json.RawMessage
	work    time.Duration
	log     *zap.Logger
}

func (j *submittedJob) Run() {
	if j.work > 0 {
		time.Sleep(j.work)
	}
	j.log.Debug("submitted job completed",
		zap.String("shard", j.shard),
		zap.Int("payload_bytes", len(j.payload)),
		zap.Duration("work", j.work),
	)
}
