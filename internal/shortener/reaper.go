package shortener

import (
	"context"
	"sync"
	"time"

	"shortlink-service/internal/metrics"

	"go.uber.org/zap"
)

// Reaper 周期性地物理删除过期记录
type Reaper struct {
	svc      *Service
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
	start    sync.Once
	stop     sync.Once
	started  bool
	logger   *zap.SugaredLogger
}

// NewReaper 创建后台清理任务
func NewReaper(svc *Service, interval time.Duration, logger *zap.SugaredLogger) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{
		svc:      svc,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Named("reaper"),
	}
}

// Start 启动后台清理
func (r *Reaper) Start() {
	r.start.Do(func() {
		r.started = true
		r.logger.Infof("启动过期清理任务，间隔 %v", r.interval)
		go r.run()
	})
}

// Stop 停止后台清理并等待当前一轮结束
func (r *Reaper) Stop() {
	r.stop.Do(func() {
		r.logger.Info("正在停止过期清理任务...")
		close(r.stopChan)
	})
	// Start 与 Stop 由同一个生命周期协程调用
	if r.started {
		<-r.done
	}
}

func (r *Reaper) run() {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce()
		case <-r.stopChan:
			r.logger.Info("已停止过期清理任务。")
			return
		}
	}
}

// RunOnce 执行一轮清理并返回删除的记录数
func (r *Reaper) RunOnce() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()

	n, err := r.svc.PurgeExpired(ctx)
	if err != nil {
		r.logger.Errorf("清理过期短链接失败: %v", err)
		return 0
	}
	if n > 0 {
		metrics.ReaperPurged.Add(float64(n))
		r.logger.Infof("已清理 %d 条过期短链接", n)
	}
	return n
}
