// Package progress implements the topic-scoped fan-out that decouples job
// orchestration from its observers. Topics are keyed by job id; delivery is
// best-effort, ordered per topic, with no replay for late subscribers.
package progress

import (
	"sync"

	"github.com/rahulmishra02/media-compressor/internal/models"
	"github.com/rahulmishra02/media-compressor/pkg/logger"
)

// Observer receives the event stream for the topics it subscribed to. Send
// returning an error marks the observer unreachable; it is dropped from
// every topic and the error never reaches the publisher.
type Observer interface {
	Send(event models.ProgressEvent) error
}

// Channel is an injected pub/sub instance, owned by the composition root so
// tests can build isolated ones.
type Channel struct {
	mu     sync.RWMutex
	topics map[string]map[Observer]struct{}
	logger logger.Logger
}

func NewChannel(logger logger.Logger) *Channel {
	return &Channel{
		topics: make(map[string]map[Observer]struct{}),
		logger: logger,
	}
}

// Subscribe adds the observer to the job's topic. Subscribing twice has the
// effect of once.
func (c *Channel) Subscribe(jobID string, obs Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	subs, ok := c.topics[jobID]
	if !ok {
		subs = make(map[Observer]struct{})
		c.topics[jobID] = subs
	}
	subs[obs] = struct{}{}
}

// Unsubscribe removes the observer from the job's topic. Absent entries are
// a no-op. Empty topics are removed to bound memory.
func (c *Channel) Unsubscribe(jobID string, obs Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	subs, ok := c.topics[jobID]
	if !ok {
		return
	}
	delete(subs, obs)
	if len(subs) == 0 {
		delete(c.topics, jobID)
	}
}

// Drop releases every subscription held by the observer, across all topics.
// Used on connection teardown so no dangling references remain.
func (c *Channel) Drop(obs Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for jobID, subs := range c.topics {
		delete(subs, obs)
		if len(subs) == 0 {
			delete(c.topics, jobID)
		}
	}
}

// Publish delivers the event to every observer currently subscribed to the
// job, in publish order. Publishing to zero subscribers is a no-op. An
// observer whose Send fails is dropped silently; the publisher never blocks
// on or retries delivery.
func (c *Channel) Publish(jobID string, event models.ProgressEvent) {
	c.mu.RLock()
	subs := c.topics[jobID]
	recipients := make([]Observer, 0, len(subs))
	for obs := range subs {
		recipients = append(recipients, obs)
	}
	c.mu.RUnlock()

	var failed []Observer
	for _, obs := range recipients {
		if err := obs.Send(event); err != nil {
			c.logger.Debugf("progress: dropping unreachable observer on job %s: %v", jobID, err)
			failed = append(failed, obs)
		}
	}
	for _, obs := range failed {
		c.Drop(obs)
	}
}

// SubscriberCount reports the current number of observers on a topic.
func (c *Channel) SubscriberCount(jobID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.topics[jobID])
}
