package daemon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/firi/golangserver/langserver"
	"github.com/firi/golangserver/lsptypes"
	"github.com/firi/golangserver/serverlog"
)

func mustMarshalParams(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic("daemon: failed to marshal notification params: " + err.Error())
	}
	return b
}

// FileWatchBridge watches a directory tree and turns batches of changes
// into workspace/didChangeWatchedFiles notifications sent through a
// langserver.Client, debounced the same way the teacher's FileWatcher
// debounces clangd re-index notifications.
//
// Adapted from internal/daemon/watcher.go's FileWatcher: the fsnotify
// recursive-watch setup and 500ms debounce timer are kept verbatim, the
// skip-dir list is extended (see defaultSkipDirs); the C++-specific isCppFile extension filter and the
// direct onChange([]string) callback are replaced by an
// extension-agnostic filter (caller-supplied) and a real LSP
// notification payload.
type FileWatchBridge struct {
	watcher *fsnotify.Watcher
	root    string
	client  langserver.Client
	logger  serverlog.Logger

	shouldWatch func(path string) bool

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
	changed       map[string]lsptypes.FileChangeType

	stop chan struct{}
}

// defaultSkipDirs mirrors the teacher's build/VCS directory skip-list,
// generalized beyond CMake output directories to common Go/Node/generic
// build artifacts too, since this bridge is no longer C++-specific.
var defaultSkipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	"build": true, "cmake-build-debug": true, "cmake-build-release": true,
	"out": true, "bin": true, "obj": true,
	"node_modules": true, "vendor": true,
}

// NewFileWatchBridge starts watching root recursively, skipping hidden
// and build-output directories below root (root itself is always
// watched). shouldWatch filters which file paths are
// worth reporting; pass nil to report every file.
func NewFileWatchBridge(root string, client langserver.Client, logger serverlog.Logger, shouldWatch func(string) bool) (*FileWatchBridge, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = serverlog.NullLogger{}
	}
	if shouldWatch == nil {
		shouldWatch = func(string) bool { return true }
	}

	fw := &FileWatchBridge{
		watcher:     watcher,
		root:        root,
		client:      client,
		logger:      logger,
		shouldWatch: shouldWatch,
		changed:     make(map[string]lsptypes.FileChangeType),
		stop:        make(chan struct{}),
	}

	if err := fw.addDirectoryRecursive(root); err != nil {
		watcher.Close()
		return nil, err
	}

	go fw.watch()
	return fw, nil
}

func (fw *FileWatchBridge) addDirectoryRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if path != dir && (strings.HasPrefix(base, ".") || defaultSkipDirs[base]) {
				return filepath.SkipDir
			}
			if err := fw.watcher.Add(path); err != nil {
				fw.logger.Info("failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
}

func (fw *FileWatchBridge) watch() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if fw.shouldWatch(event.Name) {
				switch {
				case event.Op&fsnotify.Create != 0:
					fw.recordChange(event.Name, lsptypes.FileCreated)
				case event.Op&fsnotify.Write != 0:
					fw.recordChange(event.Name, lsptypes.FileChanged)
				case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					fw.recordChange(event.Name, lsptypes.FileDeleted)
				}
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					fw.addDirectoryRecursive(event.Name)
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("file watcher error: %v", err)

		case <-fw.stop:
			return
		}
	}
}

func (fw *FileWatchBridge) recordChange(path string, changeType lsptypes.FileChangeType) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	fw.changed[path] = changeType

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(500*time.Millisecond, fw.flush)
}

func (fw *FileWatchBridge) flush() {
	fw.debounceMu.Lock()
	changes := fw.changed
	fw.changed = make(map[string]lsptypes.FileChangeType)
	fw.debounceMu.Unlock()

	if len(changes) == 0 {
		return
	}

	events := make([]lsptypes.FileEvent, 0, len(changes))
	for path, changeType := range changes {
		events = append(events, lsptypes.FileEvent{URI: "file://" + path, Type: changeType})
	}

	if err := fw.client.Notify(lsptypes.MethodDidChangeWatchedFiles, mustMarshalParams(lsptypes.DidChangeWatchedFilesParams{Changes: events})); err != nil {
		fw.logger.Error("failed to notify didChangeWatchedFiles: %v", err)
	}
}

// Stop tears down the underlying fsnotify watcher and cancels any
// pending debounce timer.
func (fw *FileWatchBridge) Stop() error {
	close(fw.stop)

	fw.debounceMu.Lock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceMu.Unlock()

	return fw.watcher.Close()
}
