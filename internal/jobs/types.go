package jobs

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/briangreenhill/almanac/douban"
)

const TaskWarmSource = "warm:source"

// WarmQueue names the queue one process enqueues its warm tasks on and
// consumes from. Caches are per process, so replicas sharing a Redis must
// not pull each other's tasks.
func WarmQueue(instance string) string {
	return "warm-" + instance
}

// InstanceName identifies this process: the hostname plus a random suffix,
// since several processes may share a host.
func InstanceName() string {
	suffix := uuid.NewString()[:8]
	if host, err := os.Hostname(); err == nil && host != "" {
		return host + "-" + suffix
	}
	return suffix
}

type WarmSourcePayload struct {
	Plugin string `json:"plugin"`
	Param  string `json:"param,omitempty"`
}

// NewWarmTask builds a task that forces a refresh of one cache key.
func NewWarmTask(p WarmSourcePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal warm payload: %w", err)
	}
	return asynq.NewTask(TaskWarmSource, payload), nil
}

// DefaultTargets lists every key worth keeping warm: today's history
// bucket and each Douban ranking.
func DefaultTargets() []WarmSourcePayload {
	targets := []WarmSourcePayload{{Plugin: "history"}}
	for _, c := range douban.Categories() {
		targets = append(targets, WarmSourcePayload{Plugin: "douban", Param: c.Name})
	}
	return targets
}
