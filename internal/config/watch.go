package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ai-visibility-validator/pkg/logger"
)

// Watcher reloads a config file when it changes and hands valid results to
// a callback. Invalid edits are logged and skipped.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *logger.Logger
	watcher  *fsnotify.Watcher
	onReload func(Config)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWatcher watches path. The parent directory is watched so that editors
// replacing the file by rename are noticed.
func NewWatcher(path string, debounce time.Duration, log *logger.Logger, onReload func(Config)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		log:      log,
		watcher:  fsWatcher,
		onReload: onReload,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop terminates the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
		w.wg.Wait()
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || event.Op == fsnotify.Chmod {
				continue
			}
			w.log.Debug("config change detected", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("config watcher error", "err", err)

		case <-timerC:
			timerC = nil
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Error("config reload failed, keeping previous", "file", w.path, "err", err)
				continue
			}
			w.log.Info("config reloaded", "file", w.path)
			w.onReload(cfg)
		}
	}
}
