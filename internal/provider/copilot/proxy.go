package copilot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/mwistrand/commitdigest/internal/provider"
	"github.com/mwistrand/commitdigest/internal/provider/openai"
)

// Proxy timings.
const (
	probeTimeout = 2 * time.Second
	pollInterval = 500 * time.Millisecond
	stopGrace    = 3 * time.Second

	// readyTimeout includes time for GitHub device authentication.
	readyTimeout = 2 * time.Minute
)

// proxyCommand launches the proxy.
var proxyCommand = []string{"npx", "copilot-api@latest", "start"}

var errProxyExited = errors.New("proxy process exited unexpectedly")

// ProxyManager starts, probes and stops a local copilot-api process.
type ProxyManager struct {
	baseURL string
	client  *http.Client

	mu     sync.Mutex
	cmd    *exec.Cmd
	exited chan struct{}
	models []provider.ModelInfo
}

// NewProxyManager creates a manager for the proxy at baseURL.
func NewProxyManager(baseURL string) *ProxyManager {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &ProxyManager{baseURL: baseURL, client: &http.Client{Timeout: probeTimeout}}
}

// EnsureRunning starts the proxy unless it already answers. It reports
// whether this call started it; the caller then owns stopping it.
func (m *ProxyManager) EnsureRunning(ctx context.Context, logFn func(string, ...any)) (bool, error) {
	if m.IsRunning(ctx) {
		return false, nil
	}

	logFn("Starting copilot-api proxy...")
	if err := m.start(ctx); err != nil {
		return false, err
	}

	logFn("Waiting for proxy to be ready (you may need to authenticate with GitHub)...")
	if err := m.waitReady(ctx, readyTimeout); err != nil {
		m.Stop()
		return false, fmt.Errorf("proxy failed to start: %w", err)
	}

	logFn("Copilot proxy ready")
	return true, nil
}

// IsRunning probes GET /v1/models and caches the model list on success.
func (m *ProxyManager) IsRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/v1/models", nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	if body, err := io.ReadAll(resp.Body); err == nil {
		if models, err := openai.ParseModels(body); err == nil {
			m.mu.Lock()
			m.models = models
			m.mu.Unlock()
		}
	}
	return true
}

// Models returns a copy of the models cached by the last successful probe.
func (m *ProxyManager) Models() []provider.ModelInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]provider.ModelInfo(nil), m.models...)
}

// WasStarted reports whether this manager owns a running proxy process.
func (m *ProxyManager) WasStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cmd != nil
}

func (m *ProxyManager) start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, proxyCommand[0], proxyCommand[1:]...)
	// Keep stdout free for the report.
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting copilot-api proxy (are Node.js and npm installed?): %w", err)
	}

	exited := make(chan struct{})
	go func() {
		cmd.Wait()
		close(exited)
	}()
	m.cmd, m.exited = cmd, exited
	return nil
}

func (m *ProxyManager) waitReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	m.mu.Lock()
	exited := m.exited
	m.mu.Unlock()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if m.IsRunning(ctx) {
			return nil
		}
		select {
		case <-exited:
			return errProxyExited
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return errors.New("timeout waiting for proxy (did you complete GitHub authentication?)")
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop interrupts the proxy started by this manager and kills it if it
// does not exit within a short grace period.
func (m *ProxyManager) Stop() {
	m.mu.Lock()
	cmd, exited := m.cmd, m.exited
	m.cmd, m.exited = nil, nil
	m.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}

	cmd.Process.Signal(os.Interrupt)
	select {
	case <-exited:
	case <-time.After(stopGrace):
		cmd.Process.Kill()
		<-exited
	}
}
