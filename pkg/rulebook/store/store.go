package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mercator-hq/ruler/pkg/rulebook"
	"mercator-hq/ruler/pkg/rulebook/parser"
)

// Store loads rulebook files into a registry and keeps them fresh. One
// Store instance serves the whole process.
type Store struct {
	path     string
	parser   *parser.Parser
	registry *Registry
	logger   *slog.Logger
	watcher  *FileWatcher
	onReload func(success bool)
}

// Options configures a Store.
type Options struct {
	// Path is the rulebook file or directory of rulebook files.
	Path string

	// Parser overrides the default parser, used to tighten limits.
	Parser *parser.Parser

	// Logger is the structured logger. Defaults to slog.Default.
	Logger *slog.Logger

	// OnReload is invoked after every watcher-triggered reload with its
	// outcome. May be nil.
	OnReload func(success bool)
}

// New creates a Store over a rulebook path. Call Load before serving.
func New(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("rulebook path cannot be empty")
	}
	if opts.Parser == nil {
		opts.Parser = parser.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Store{
		path:     opts.Path,
		parser:   opts.Parser,
		registry: NewRegistry(),
		logger:   opts.Logger.With("component", "rulebook.store"),
		onReload: opts.OnReload,
	}, nil
}

// Registry exposes the underlying registry for read access.
func (s *Store) Registry() *Registry { return s.registry }

// Get retrieves a rule by clause ID.
func (s *Store) Get(clauseID string) (*rulebook.Rule, bool) {
	return s.registry.Get(clauseID)
}

// Load reads every rulebook file under the configured path and atomically
// replaces the registry contents. A failed load leaves the previous rule
// set in place.
func (s *Store) Load() error {
	paths, err := s.rulebookFiles()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no rulebook files found under %s", s.path)
	}

	var rules []*rulebook.Rule
	for _, path := range paths {
		book, err := s.parser.ParseFile(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		rules = append(rules, book.Rules...)
	}

	if err := s.registry.Replace(rules); err != nil {
		return fmt.Errorf("replacing rule set: %w", err)
	}

	s.logger.Info("rulebooks loaded",
		"files", len(paths),
		"rules", s.registry.Count(),
		"version", s.registry.Version(),
	)
	return nil
}

// Watch hot-reloads the registry when rulebook files change. It blocks
// until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := NewFileWatcher(&FileWatcherConfig{Path: s.path}, s.logger)
	if err != nil {
		return err
	}
	s.watcher = watcher

	return watcher.Watch(ctx, s.reload)
}

// reload runs Load and reports the outcome to the OnReload hook.
func (s *Store) reload() error {
	err := s.Load()
	if s.onReload != nil {
		s.onReload(err == nil)
	}
	return err
}

// rulebookFiles resolves the configured path to the sorted list of JSON
// files to load.
func (s *Store) rulebookFiles() ([]string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("accessing rulebook path: %w", err)
	}

	if !info.IsDir() {
		return []string{s.path}, nil
	}

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading rulebook directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(s.path, name))
	}
	sort.Strings(paths)
	return paths, nil
}
