package main

import (
	"context"

	"github.com/iov-one/yieldshift"
	"github.com/robfig/cron/v3"
)

// scheduler runs the heartbeat of the engine on a cron schedule.
type scheduler struct {
	cron   *cron.Cron
	server *server
}

func newScheduler(s *server, spec string) (*scheduler, error) {
	c := cron.New()
	sch := &scheduler{cron: c, server: s}
	if _, err := c.AddFunc(spec, sch.tick); err != nil {
		return nil, err
	}
	return sch, nil
}

func (s *scheduler) Start() {
	s.cron.Start()
	s.server.logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running heartbeat to finish.
func (s *scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.server.logger.Info("scheduler stopped")
}

func (s *scheduler) tick() {
	s.server.mu.Lock()
	defer s.server.mu.Unlock()

	ctx := yieldshift.WithLogger(context.Background(), s.server.logger)
	ctx = yieldshift.WithBlockTime(ctx, s.server.now())
	updated, err := s.server.heartbeat(ctx)
	if err != nil {
		s.server.logger.Error("heartbeat failed", "err", err)
		return
	}
	s.server.metrics.observe(s.server.engine)
	s.server.logger.Debug("heartbeat", "updated", updated)
}
