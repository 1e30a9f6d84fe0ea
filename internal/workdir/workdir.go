// Package workdir creates per-evaluation working directories and removes them
// according to a keep-first/keep-last retention policy.
package workdir

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/specialistvlad/nastranwrap/internal/config"
	"github.com/specialistvlad/nastranwrap/internal/ctxlog"
)

const pattern = "nastranwrap-*"

// Manager hands out working directories and applies the retention policy
// when they are released.
type Manager struct {
	policy config.WorkdirPolicy

	// remove is os.RemoveAll outside tests.
	remove func(string) error

	mu        sync.Mutex
	seenFirst bool
	last      string
}

// New returns a Manager for policy. An empty Parent means os.TempDir().
func New(policy config.WorkdirPolicy) *Manager {
	if policy.Parent == "" {
		policy.Parent = os.TempDir()
	}
	return &Manager{policy: policy, remove: os.RemoveAll}
}

// Policy returns the policy the manager applies.
func (m *Manager) Policy() config.WorkdirPolicy {
	return m.policy
}

// Create makes a new, empty working directory.
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.policy.Parent, 0o755); err != nil {
		return "", fmt.Errorf("creating workdir parent: %w", err)
	}
	dir, err := os.MkdirTemp(m.policy.Parent, pattern)
	if err != nil {
		return "", fmt.Errorf("creating workdir: %w", err)
	}
	return dir, nil
}

// Release applies the retention policy to dir after a successful evaluation
// and reports whether dir was kept.
func (m *Manager) Release(ctx context.Context, dir string) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.policy.Delete {
		return true, nil
	}

	first := !m.seenFirst
	m.seenFirst = true

	if first && m.policy.KeepFirst {
		logger.Debug("Keeping first workdir.", "dir", dir)
		return true, nil
	}

	if m.policy.KeepLast {
		prev := m.last
		m.last = dir
		if prev != "" {
			logger.Debug("Removing previous workdir.", "dir", prev)
			if err := m.remove(prev); err != nil {
				return true, fmt.Errorf("removing previous workdir %s: %w", prev, err)
			}
		}
		return true, nil
	}

	logger.Debug("Removing workdir.", "dir", dir)
	if err := m.remove(dir); err != nil {
		return false, fmt.Errorf("removing workdir: %w", err)
	}
	return false, nil
}
