package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// FileConfig configures the file backend.
type FileConfig struct {
	// Path defaults to $HOME/.dendrite-echo/preferences.yml in the CLI.
	Path string `json:"path" mapstructure:"path" yaml:"path"`
}

// File stores values as a YAML mapping in a single file. Every operation
// re-reads the file so edits made by other processes are not lost.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file storage at path. The file is created on first write.
func NewFile(path string) *File {
	return &File{path: filepath.Clean(path)}
}

// Path returns the location of the backing file.
func (f *File) Path() string {
	return f.path
}

// GetItem implements Storage.
func (f *File) GetItem(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return "", false, err
	}

	value, ok := items[key]

	return value, ok, nil
}

// SetItem implements Storage.
func (f *File) SetItem(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}

	items[key] = value

	return f.save(items)
}

// RemoveItem implements Storage.
func (f *File) RemoveItem(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := items[key]; !ok {
		return nil
	}

	delete(items, key)

	return f.save(items)
}

// Close implements Storage.
func (f *File) Close() error {
	return nil
}

// Items returns a copy of every stored value.
func (f *File) Items() (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.load()
}

// Watch calls onChange with the new contents whenever the file is changed
// by anyone, until ctx is done. Bursts of events are coalesced.
func (f *File) Watch(ctx context.Context, onChange func(map[string]string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}

	dir := filepath.Dir(f.path)

	err = os.MkdirAll(dir, constants.ConfigDirPerm)
	if err != nil {
		_ = watcher.Close()

		return fmt.Errorf("creating storage directory: %w", err)
	}

	// The directory is watched so atomic renames are seen.
	err = watcher.Add(dir)
	if err != nil {
		_ = watcher.Close()

		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		var debounceTimer *time.Timer

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if filepath.Clean(event.Name) != f.path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}

				if debounceTimer != nil {
					debounceTimer.Stop()
				}

				debounceTimer = time.AfterFunc(constants.WatchDebounce, func() {
					items, err := f.Items()
					if err != nil {
						log.WithError(err).WithField("path", f.path).Warn("failed to reload storage file")

						return
					}

					onChange(items)
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				log.WithError(err).Warn("storage file watcher error")

			case <-ctx.Done():
				if debounceTimer != nil {
					debounceTimer.Stop()
				}

				return
			}
		}
	}()

	return nil
}

func (f *File) load() (map[string]string, error) {
	items := make(map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return items, nil
		}

		return nil, fmt.Errorf("reading storage file: %w", err)
	}

	err = yaml.Unmarshal(data, &items)
	if err != nil {
		return nil, fmt.Errorf("parsing storage file %s: %w", f.path, err)
	}

	if items == nil {
		items = make(map[string]string)
	}

	return items, nil
}

func (f *File) save(items map[string]string) error {
	dir := filepath.Dir(f.path)

	err := os.MkdirAll(dir, constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	data, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding storage file: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() { _ = os.Remove(tmpName) }()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(constants.ConfigFilePerm)
	}

	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("writing storage file: %w", err)
	}

	err = os.Rename(tmpName, f.path)
	if err != nil {
		return fmt.Errorf("replacing storage file: %w", err)
	}

	return nil
}
