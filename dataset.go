package main

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Dataset holds the rides currently being served. Uploads replace the whole
// slice; readers get a shared snapshot they must not mutate.
type Dataset struct {
	mu     sync.RWMutex
	rides  []Ride
	source string // "sample", "upload" or "store"
}

func NewDataset(rides []Ride, source string) *Dataset {
	return &Dataset{rides: rides, source: source}
}

func (d *Dataset) Rides() []Ride {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rides
}

func (d *Dataset) Source() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.source
}

func (d *Dataset) Replace(rides []Ride, source string) {
	d.mu.Lock()
	d.rides = rides
	d.source = source
	d.mu.Unlock()
}

// WatchSampleFile reloads the sample CSV when it changes on disk, as long as
// nothing has been uploaded yet. Returns a stop function; callers that get
// an error just run without live reload.
func (d *Dataset) WatchSampleFile(path string, loader *Loader, log *zap.Logger) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if d.Source() == "upload" {
					continue
				}
				raw, err := os.ReadFile(path)
				if err != nil {
					log.Warn("Sample reload failed", zap.String("path", path), zap.Error(err))
					continue
				}
				rides, err := loader.Load(raw, path, "text/csv")
				if err != nil {
					log.Warn("Sample reload failed", zap.String("path", path), zap.Error(err))
					continue
				}
				d.Replace(rides, "sample")
				log.Info("Sample data reloaded", zap.String("path", path), zap.Int("rides", len(rides)))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("Sample watcher error", zap.Error(err))
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
