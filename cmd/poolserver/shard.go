package main

import (
	"fmt"
	"time"

	"github.com/ecloudclub/elastipool/loadbalance/consistencyhash"
	"github.com/ecloudclub/elastipool/pool"
)

// hashReplicas is the virtual-node multiplier handed to the consistent hash
// ring; higher values spread shard ownership more evenly across the key
// space at the cost of a slightly larger ring.
const hashReplicas = 160

// shardRouter assigns an inbound routing key to one of a fixed set of named
// pool shards through a consistent hash ring. This gives sticky affinity for
// a given key without the core pool itself making any fairness promise.
type shardRouter struct {
	ring   *consistencyhash.ConsistentHash
	shards map[string]*pool.Pool
	order  []string
}

func newShardRouter(count int, newShard func(name string) (*pool.Pool, error)) (*shardRouter, error) {
	ring := consistencyhash.NewConsistentHash(hashReplicas)
	r := &shardRouter{
		shards: make(map[string]*pool.Pool, count),
		order:  make([]string, 0, count),
	}
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("shard-%d", i)
		shard, err := newShard(name)
		if err != nil {
			return nil, fmt.Errorf("shard %s: %w", name, err)
		}
		r.shards[name] = shard
		r.order = append(r.order, name)
		ring.AddNode(name)
	}
	r.ring = ring
	return r, nil
}

// route picks the shard owning key on the ring. The name is always one of
// the configured shards once at least one has been added.
func (r *shardRouter) route(key string) (string, *pool.Pool) {
	name := r.ring.GetNode(key)
	return name, r.shards[name]
}

func (r *shardRouter) names() []string {
	return r.order
}

func (r *shardRouter) startAll() error {
	for _, name := range r.order {
		if err := r.shards[name].Start(); err != nil {
			return fmt.Errorf("shard %s: %w", name, err)
		}
	}
	return nil
}

func (r *shardRouter) stopAll(timeout time.Duration) error {
	var firstErr error
	for _, name := range r.order {
		if err := r.shards[name].Stop(timeout); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shard %s: %w", name, err)
		}
	}
	return firstErr
}

// everyRunning reports whether every shard is currently serving work.
func (r *shardRouter) everyRunning() bool {
	for _, name := range r.order {
		if !r.shards[name].IsRunning() {
			return false
		}
	}
	return true
}

// anyStoppingOrDown reports whether any shard has begun stopping, has
// fully stopped, or was never started.
func (r *shardRouter) anyStoppingOrDown() bool {
	for _, name := range r.order {
		s := r.shards[name]
		if !s.IsStarted() || s.IsStopping() {
			return true
		}
	}
	return false
}
