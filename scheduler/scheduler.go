package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"milo_career/config"
	"milo_career/logger"
)

// 将秒数转换为时间间隔
func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// SessionSweeper 按空闲时长清理会话
type SessionSweeper interface {
	SweepIdle(ctx context.Context, ttl time.Duration) (int, error)
}

// 任务类型
type TaskType int

const (
	TaskSessionSweep TaskType = iota
)

// 任务状态
type TaskStatus struct {
	LastRun     time.Time
	NextRun     time.Time
	IsRunning   bool
	Description string
	interval    time.Duration
}

// 任务调度器
type Scheduler struct {
	sweeper  SessionSweeper
	idleTTL  time.Duration
	interval time.Duration
	tasks    map[TaskType]*TaskStatus
	mutex    sync.Mutex
	wg       sync.WaitGroup
}

// 创建新的调度器
func NewScheduler(cfg *config.Config, sweeper SessionSweeper) *Scheduler {
	interval := secondsToDuration(cfg.Session.SweepIntervalSec)
	if interval <= 0 {
		interval = time.Minute // 默认值
	}

	return &Scheduler{
		sweeper:  sweeper,
		idleTTL:  time.Duration(cfg.Session.IdleTTLMinutes) * time.Minute,
		interval: interval,
		tasks:    make(map[TaskType]*TaskStatus),
	}
}

// Start 启动调度器，ctx 取消后主循环退出；未配置空闲清理时不启动
func Start(ctx context.Context, cfg *config.Config, sweeper SessionSweeper) *Scheduler {
	s := NewScheduler(cfg, sweeper)
	if s.idleTTL <= 0 {
		logger.Info("空闲会话清理未启用", "idle_ttl_minutes", cfg.Session.IdleTTLMinutes)
		return s
	}

	s.initTasks(time.Now())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()

	logger.Info("调度器已启动", "check_interval", s.interval, "idle_ttl", s.idleTTL)
	return s
}

// Wait 等待主循环与正在执行的任务结束
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// 初始化任务
func (s *Scheduler) initTasks(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tasks[TaskSessionSweep] = &TaskStatus{
		NextRun:     now.Add(s.interval),
		Description: fmt.Sprintf("空闲会话清理 (超过%v未活动)", s.idleTTL),
		interval:    s.interval,
	}
	logger.Info("定时任务初始化完成", "task_count", len(s.tasks))
}

// 主循环
func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.checkTasks(ctx, now)
		case <-ctx.Done():
			logger.Info("调度器已停止")
			return
		}
	}
}

// 检查任务
func (s *Scheduler) checkTasks(ctx context.Context, now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for taskType, status := range s.tasks {
		// 如果任务正在运行，跳过
		if status.IsRunning {
			continue
		}

		if !now.Before(status.NextRun) {
			status.IsRunning = true
			s.wg.Add(1)
			go func(taskType TaskType) {
				defer s.wg.Done()
				s.runTask(ctx, taskType, now)
			}(taskType)
		}
	}
}

// 运行任务
func (s *Scheduler) runTask(ctx context.Context, taskType TaskType, now time.Time) {
	defer func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		status := s.tasks[taskType]
		status.IsRunning = false
		status.LastRun = now
		status.NextRun = now.Add(status.interval)
	}()

	switch taskType {
	case TaskSessionSweep:
		removed, err := s.sweeper.SweepIdle(ctx, s.idleTTL)
		if err != nil {
			logger.Error("空闲会话清理失败", "error", err, "removed", removed)
			return
		}
		if removed > 0 {
			logger.Info("空闲会话清理完成", "removed", removed)
		}
	}
}
