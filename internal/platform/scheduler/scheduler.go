// Package scheduler は銘柄カタログ同期などの定期ジョブを cron で実行します。
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job は定期実行される処理です。
type Job func(ctx context.Context) error

// Scheduler は登録されたジョブを秒精度の cron 式で実行します。
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	timeout time.Duration

	mu   sync.Mutex
	jobs map[string]Job
}

// New はSchedulerの新しいインスタンスを生成します。
// 各ジョブは ctx から派生した timeout 付きのコンテキストで実行されます（0 以下なら無制限）。
// 前回の実行が終わっていないジョブはスキップされます。
func New(ctx context.Context, loc *time.Location, timeout time.Duration) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:     ctx,
		timeout: timeout,
		jobs:    map[string]Job{},
	}
}

// Register は spec（秒付き6フィールドの cron 式）で name のジョブを登録します。
func (s *Scheduler) Register(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("register %s task: already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	s.jobs[name] = job
	slog.Info("scheduled task registered", "task", name, "spec", spec)
	return nil
}

// RunNow は登録済みのジョブを即座に同期実行します。
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) error {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	if err := job(ctx); err != nil {
		slog.Error("scheduled task failed", "task", name, "error", err, "elapsed", time.Since(started))
		return err
	}
	slog.Info("scheduled task finished", "task", name, "elapsed", time.Since(started))
	return nil
}

// Len は登録済みのジョブ数を返します。
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start はスケジューラを起動します。
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "tasks", s.Len())
}

// Stop はスケジューラを停止し、実行中のジョブの完了を待ちます。
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}
