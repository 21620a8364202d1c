package services

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PromptService serves the current system prompt, hot-reloading it when
// the prompt file changes on disk.
type PromptService struct {
	path   string
	mu     sync.RWMutex
	prompt string
}

// NewPromptService loads the prompt file. A missing file is tolerated:
// the prompt stays empty until the file appears.
func NewPromptService(path string) *PromptService {
	s := &PromptService{path: path}
	if err := s.reload(); err != nil {
		log.Printf("⚠️  System prompt not loaded from %s: %v", path, err)
	}
	return s
}

// SystemPrompt returns the current prompt text.
func (s *PromptService) SystemPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prompt
}

func (s *PromptService) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.prompt = strings.TrimSpace(string(data))
	s.mu.Unlock()
	return nil
}

// Watch watches the prompt file for changes and reloads it. Blocks until
// the watcher fails; run it on its own goroutine.
func (s *PromptService) Watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️  Failed to create file watcher: %v", err)
		return
	}

	absPath, err := filepath.Abs(s.path)
	if err != nil {
		log.Printf("⚠️  Failed to get absolute path for %s: %v", s.path, err)
		watcher.Close()
		return
	}

	// Watch the directory containing the file (more reliable than watching the file directly)
	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)

	if err := watcher.Add(dir); err != nil {
		log.Printf("⚠️  Failed to watch directory %s: %v", dir, err)
		watcher.Close()
		return
	}

	log.Printf("👁️  Watching %s for changes (hot-reload enabled)", s.path)

	// Debounce to avoid multiple reloads for rapid file changes
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := s.reload(); err != nil {
						log.Printf("❌ Failed to reload system prompt: %v", err)
					} else {
						log.Printf("🔄 System prompt reloaded from %s", s.path)
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  File watcher error: %v", err)
		}
	}
}
