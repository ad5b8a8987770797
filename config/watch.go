package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultCooldown 两次重载之间的最小间隔，吸收编辑器连续写入。
const DefaultCooldown = 1 * time.Second

// Watcher 监听配置文件变化：验证通过的新配置交给 OnApply，
// 验证失败只回调 OnReject，运行中的配置保持不变。
type Watcher struct {
	path     string
	cooldown time.Duration
	fsw      *fsnotify.Watcher

	mu         sync.Mutex
	onApply    func(AppConfig)
	onReject   func(error)
	lastReload time.Time

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewWatcher 创建配置监听器。cooldown<=0 时使用 DefaultCooldown。
func NewWatcher(path string, cooldown time.Duration) (*Watcher, error) {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	return &Watcher{
		path:     path,
		cooldown: cooldown,
		fsw:      fsw,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}, nil
}

// OnApply 注册新配置生效回调。
func (w *Watcher) OnApply(fn func(AppConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onApply = fn
}

// OnReject 注册验证失败回调。
func (w *Watcher) OnReject(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReject = fn
}

// Start 把配置文件加入监听并启动后台 goroutine。
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(w.path); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	go w.watch(ctx)
	return nil
}

// Stop 停止监听并等待后台 goroutine 退出。
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.stopChan) })
	select {
	case <-w.doneChan:
	case <-time.After(time.Second):
		// watch goroutine 可能从未启动
	}
	return w.fsw.Close()
}

// LastReload 返回最近一次成功重载的时间。
func (w *Watcher) LastReload() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastReload
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// 只关心写入/重建；很多编辑器以 rename+create 落盘。
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.handleChange()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reject(fmt.Errorf("config watcher: %w", err))
		}
	}
}

func (w *Watcher) handleChange() {
	w.mu.Lock()
	if time.Since(w.lastReload) < w.cooldown {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	cfg, err := LoadWithEnvOverrides(w.path)
	if err != nil {
		w.reject(fmt.Errorf("reload config: %w", err))
		return
	}

	w.mu.Lock()
	w.lastReload = time.Now()
	apply := w.onApply
	w.mu.Unlock()

	if apply != nil {
		apply(cfg)
	}
}

func (w *Watcher) reject(err error) {
	w.mu.Lock()
	fn := w.onReject
	w.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
