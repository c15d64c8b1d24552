package config

import (
	"context"

	"github.com/fsnotify/fsnotify"

	telemetrylog "github.com/hardenmedia/mediaharden/internal/telemetry/log"
)

// WatchWasmModuleDir watches cfg.WasmModuleDir the way ManuGH-xg2g's
// ConfigHolder.StartWatcher watches its config file: Create/Write/
// Rename events call onChange with the path that changed, so
// cmd/mediaharden can pick up newly dropped WASM modules without a
// restart. A no-op if WasmModuleDir is unset.
func WatchWasmModuleDir(ctx context.Context, cfg *Config, onChange func(path string)) error {
	if cfg.WasmModuleDir == "" {
		telemetrylog.Infof("config: no WASM module directory configured, watcher disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(cfg.WasmModuleDir); err != nil {
		watcher.Close()
		return err
	}

	telemetrylog.WithField("dir", cfg.WasmModuleDir).Infof("config: watching WASM module directory")
	go watchLoop(ctx, watcher, onChange)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func(path string)) {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				telemetrylog.WithField("path", event.Name).Debugf("config: WASM module directory changed")
				onChange(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			telemetrylog.Errorf("config: watcher error: %v", err)
		}
	}
}
