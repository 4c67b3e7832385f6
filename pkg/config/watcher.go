package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vietfact/newsguard/pkg/observability/logging"
)

// WatchFile watches the config file and re-parses it on change, replacing the
// global config and invoking onChange with the new value. Parse failures keep
// the previous config in place. The watcher runs until ctx is cancelled.
//
// The parent directory is watched as well so symlink swaps (mounted config
// files) are picked up.
func WatchFile(ctx context.Context, configPath string, onChange func(*AppConfig)) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Errorf("config watcher: create failed: %v", err)
		return
	}
	defer watcher.Close()

	cfgDir := filepath.Dir(configPath)
	if err := watcher.Add(cfgDir); err != nil {
		logging.Errorf("config watcher: watch %s failed: %v", cfgDir, err)
		return
	}
	// Watching the file itself can fail for symlinks; the directory watch
	// covers that case.
	_ = watcher.Add(configPath)

	var (
		pending bool
		last    time.Time
	)
	debounce := time.NewTicker(300 * time.Millisecond)
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) == 0 {
				continue
			}
			if filepath.Base(ev.Name) != filepath.Base(configPath) && filepath.Dir(ev.Name) != cfgDir {
				continue
			}
			pending = true
			last = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Warnf("config watcher: %v", err)
		case <-debounce.C:
			if !pending || time.Since(last) < 250*time.Millisecond {
				continue
			}
			pending = false
			newCfg, err := Parse(configPath)
			if err != nil {
				logging.Warnf("config reload rejected, keeping previous config: %v", err)
				continue
			}
			Replace(newCfg)
			logging.Infof("config reloaded from %s", configPath)
			if onChange != nil {
				onChange(newCfg)
			}
		}
	}
}
