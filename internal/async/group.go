// Package async runs detached best-effort work that must not outlive shutdown.
package async

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HanTheDev/review-reply-gateway/internal/logger"
)

const defaultTimeout = 10 * time.Second

type Group struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewGroup(timeout time.Duration) *Group {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Group{timeout: timeout}
}

// Go runs fn on its own goroutine with a fresh context bounded by the group
// timeout. Panics are recovered and logged under name.
func (g *Group) Go(name string, fn func(ctx context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Log.WithFields(logrus.Fields{
					"task":  name,
					"panic": fmt.Sprint(r),
				}).Error("background task panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until every task has finished or ctx is done.
func (g *Group) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
