package policyfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"mercator-hq/saturn/pkg/governance"
	"mercator-hq/saturn/pkg/store"
)

// policyDoc is the on-disk shape of a governance policy.
type policyDoc struct {
	Name              string  `yaml:"name"`
	MaxRisk           float64 `yaml:"max_risk"`
	ApprovalThreshold float64 `yaml:"approval_threshold"`
	MaxDisparity      float64 `yaml:"max_disparity"`
}

// Load reads and validates a policy file.
func Load(path string) (*governance.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %q: %w", path, err)
	}

	var doc policyDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %q: %w", path, err)
	}

	p := &governance.Policy{
		ID:                uuid.NewString(),
		Name:              doc.Name,
		MaxRisk:           doc.MaxRisk,
		ApprovalThreshold: doc.ApprovalThreshold,
		MaxDisparity:      doc.MaxDisparity,
		CreatedAt:         time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy file %q: %w", path, err)
	}
	return p, nil
}

// Watcher watches a policy file and activates the policy it contains
// whenever the file changes.
type Watcher struct {
	path   string
	store  *store.Store
	logger *slog.Logger
}

// NewWatcher creates a policy file watcher.
func NewWatcher(path string, st *store.Store, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:   path,
		store:  st,
		logger: logger.With("component", "policyfile.watcher"),
	}
}

// ActivateOnce loads the file and activates its policy.
func (w *Watcher) ActivateOnce(ctx context.Context) error {
	p, err := Load(w.path)
	if err != nil {
		return err
	}
	if err := w.store.ActivatePolicy(ctx, p); err != nil {
		return err
	}
	w.logger.Info("policy activated from file",
		"path", w.path,
		"policy_id", p.ID,
		"policy_name", p.Name,
		"version", p.Version,
	)
	return nil
}

// Watch activates the file's policy now and again on every write to it,
// until ctx is done. Editors often replace files via rename, so the parent
// directory is watched and events are filtered to the policy path.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.ActivateOnce(ctx); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	go func() {
		defer fw.Close()
		target := filepath.Clean(w.path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := w.ActivateOnce(ctx); err != nil {
					w.logger.Error("failed to activate updated policy file",
						"path", w.path,
						"error", err,
					)
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.Error("policy file watcher error", "error", err)
			}
		}
	}()

	w.logger.Info("watching policy file", "path", w.path)
	return nil
}
