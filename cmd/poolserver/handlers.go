package main

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecloudclub/elastipool/auth/authn"
	"github.com/ecloudclub/elastipool/pool"
)

// maxSubmittedWork caps the duration a /submit request can ask a demo job
// to simulate, so a malformed client can't park a worker indefinitely.
const maxSubmittedWork = 30 * time.Second

type submitRequest struct {
	Payload    interface{} `json:"payload"`
	DurationMS int         `json:"duration_ms"`
}

type submitResponse struct {
	Shard    string `json:"shard"`
	Accepted bool   `json:"accepted"`
}

func routingKey(c *gin.Context) string {
	if key := c.GetHeader("X-Routing-Key"); key != "" {
		return key
	}
	return c.ClientIP()
}

func submitHandler(router *shardRouter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		work := time.Duration(req.DurationMS) * time.Millisecond
		if work > maxSubmittedWork {
			work = maxSubmittedWork
		}

		name, shard := router.route(routingKey(c))
		payload, err := sonic.Marshal(req.Payload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		job := &submittedJob{shard: name, payload: payload, work: work, log: log}
		if err := shard.Execute(job); err != nil {
			status := http.StatusServiceUnavailable
			if errors.Is(err, pool.ErrRejected) {
				status = http.StatusTooManyRequests
			}
			c.JSON(status, gin.H{"error": err.Error(), "shard": name})
			return
		}

		c.JSON(http.StatusAccepted, submitResponse{Shard: name, Accepted: true})
	}
}

type shardStatus struct {
	Name            string  `json:"name"`
	Running         bool    `json:"running"`
	Threads         int     `json:"threads"`
	IdleThreads     int     `json:"idle_threads"`
	BusyThreads     int     `json:"busy_threads"`
	QueueSize       int     `json:"queue_size"`
	UtilizationRate float64 `json:"utilization_rate"`
	LowOnThreads    bool    `json:"low_on_threads"`
}

type statusResponse struct {
	Shards []shardStatus `json:"shards"`
}

func statusHandler(router *shardRouter) gin.HandlerFunc {
	return func(c *gin.Context) {
		names := append([]string(nil), router.names()...)
		sort.Strings(names)

		resp := statusResponse{Shards: make([]shardStatus, 0, len(names))}
		for _, name := range names {
			p := router.shards[name]
			resp.Shards = append(resp.Shards, shardStatus{
				Name:            name,
				Running:         p.IsRunning(),
				Threads:         p.Threads(),
				IdleThreads:     p.IdleThreads(),
				BusyThreads:     p.BusyThreads(),
				QueueSize:       p.QueueSize(),
				UtilizationRate: p.UtilizationRate(),
				LowOnThreads:    p.IsLowOnThreads(),
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}

// jwtAuth guards a route group behind a bearer token, reusing the same
// JWTHandler the gRPC surface would use for an incoming-metadata token.
func jwtAuth(h *authn.JWTHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := h.ParseToken(c); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

func dumpHandler(router *shardRouter) gin.HandlerFunc {
	return func(c *gin.Context) {
		includeQueue := c.Query("queue") == "true"
		names := append([]string(nil), router.names()...)
		sort.Strings(names)

		reports := make(map[string]pool.DumpReport, len(names))
		for _, name := range names {
			reports[name] = router.shards[name].ThreadDump(includeQueue)
		}

		body, err := sonic.Marshal(reports)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}
