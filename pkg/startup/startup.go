package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

// Dependency is one startable piece of infrastructure (database, kafka
// consumer, http server). DependsOn names dependencies that must be started
// first.
type Dependency interface {
	GetName() string
	DependsOn() []string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type Status int

const (
	StatusPending Status = iota
	StatusStarted
	StatusStopped
	StatusFailed
)

// Manager starts registered dependencies in dependency order with fibonacci
// backoff between failed attempts, and stops them in reverse registration
// order.
type Manager struct {
	order        []string
	dependencies map[string]Dependency
	statuses     map[string]Status
	logger       ectologger.Logger
	maxAttempts  int
}

func NewManager(logger ectologger.Logger, maxAttempts int) *Manager {
	return &Manager{
		logger:       logger,
		dependencies: make(map[string]Dependency),
		statuses:     make(map[string]Status),
		maxAttempts:  maxAttempts,
	}
}

func (m *Manager) AddDependency(dependency Dependency) {
	name := dependency.GetName()
	if _, exists := m.dependencies[name]; !exists {
		m.order = append(m.order, name)
	}
	m.dependencies[name] = dependency
}

func (m *Manager) Start(ctx context.Context) error {
	var lastErr error

	a, b := 1, 1
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		m.logger.WithField("attempt", attempt).Infof("Beginning startup attempt %d", attempt)

		lastErr = nil
		for _, name := range m.order {
			if err := m.startDependency(ctx, m.dependencies[name]); err != nil {
				m.logger.WithError(err).Errorf("Startup dependency '%s' attempt %d failed", name, attempt)
				lastErr = err
				break
			}
		}

		if lastErr == nil {
			return nil
		}

		if attempt >= m.maxAttempts {
			return fmt.Errorf("startup failed after %d attempts: %w", attempt, lastErr)
		}

		m.logger.Infof("Retrying in %d seconds (attempt %d/%d)", a, attempt, m.maxAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(a) * time.Second):
		}
		a, b = b, a+b
	}

	return lastErr
}

func (m *Manager) startDependency(ctx context.Context, dependency Dependency) error {
	name := dependency.GetName()
	if m.statuses[name] == StatusStarted {
		return nil
	}

	for _, upstream := range dependency.DependsOn() {
		dep, ok := m.dependencies[upstream]
		if !ok {
			return fmt.Errorf("dependency '%s' depends on unregistered '%s'", name, upstream)
		}
		if m.statuses[upstream] != StatusStarted {
			if err := m.startDependency(ctx, dep); err != nil {
				return err
			}
		}
	}

	m.logger.WithField("dependency", name).Infof("Starting dependency '%s'", name)
	m.statuses[name] = StatusPending
	if err := dependency.Start(ctx); err != nil {
		m.statuses[name] = StatusFailed
		m.logger.WithError(err).WithField("dependency", name).Errorf("Failed to start dependency '%s'", name)
		return err
	}
	m.statuses[name] = StatusStarted
	return nil
}

// Stop stops dependencies in reverse registration order
func (m *Manager) Stop(ctx context.Context) error {
	for i := len(m.order) - 1; i >= 0; i-- {
		name := m.order[i]
		if m.statuses[name] != StatusStarted {
			continue
		}
		dependency := m.dependencies[name]
		m.logger.WithField("dependency", name).Infof("Stopping dependency '%s'", name)
		if err := dependency.Stop(ctx); err != nil {
			m.logger.WithError(err).WithField("dependency", name).Errorf("Failed to stop dependency '%s'", name)
			return err
		}
		m.statuses[name] = StatusStopped
	}
	return nil
}
