package guard

// Package guard detects whether the pipeline is being started from inside
// an engine session, which would make the engine spawn a nested copy of itself.

import (
	"fmt"
	"os"

	"github.com/perfgo/perfreport/config"
)

// Guard checks the two reentrancy signals.
type Guard struct {
	envFlag      string
	sentinelFile string
	lookupEnv    func(string) (string, bool)
	stat         func(string) (os.FileInfo, error)
}

// New returns a Guard for the given signal names.
func New(cfg config.Guard) *Guard {
	return &Guard{
		envFlag:      cfg.EnvFlag,
		sentinelFile: cfg.SentinelFile,
		lookupEnv:    os.LookupEnv,
		stat:         os.Stat,
	}
}

// Check reports whether either signal says an engine session is active, and
// which signal fired.
func (g *Guard) Check() (active bool, reason string) {
	if g.envFlag != "" {
		if v, ok := g.lookupEnv(g.envFlag); ok && v != "" {
			return true, fmt.Sprintf("environment variable %s is set", g.envFlag)
		}
	}
	if g.sentinelFile != "" {
		if _, err := g.stat(g.sentinelFile); err == nil {
			return true, fmt.Sprintf("sentinel file %s exists", g.sentinelFile)
		}
	}
	return false, ""
}

// Active is Check without the reason.
func (g *Guard) Active() bool {
	active, _ := g.Check()
	return active
}
