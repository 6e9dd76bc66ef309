package guard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/perfgo/perfreport/config"
	"github.com/stretchr/testify/require"
)

func TestGuard_Check(t *testing.T) {
	const flag = "PERFREPORT_TEST_SESSION"

	tests := []struct {
		name        string
		envValue    string
		setEnv      bool
		sentinel    bool
		disableFlag bool
		wantActive  bool
	}{
		{name: "no signals", wantActive: false},
		{name: "env flag set", setEnv: true, envValue: "1", wantActive: true},
		{name: "env flag empty", setEnv: true, envValue: "", wantActive: false},
		{name: "sentinel present", sentinel: true, wantActive: true},
		{name: "both present", setEnv: true, envValue: "1", sentinel: true, wantActive: true},
		{name: "env flag disabled", setEnv: true, envValue: "1", disableFlag: true, wantActive: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			sentinel := filepath.Join(dir, "active-session")
			if tt.sentinel {
				require.NoError(t, os.WriteFile(sentinel, nil, 0644))
			}

			t.Setenv(flag, "")
			os.Unsetenv(flag)
			if tt.setEnv {
				t.Setenv(flag, tt.envValue)
			}

			cfg := config.Guard{EnvFlag: flag, SentinelFile: sentinel}
			if tt.disableFlag {
				cfg.EnvFlag = ""
			}

			active, reason := New(cfg).Check()
			require.Equal(t, tt.wantActive, active)
			if active {
				require.NotEmpty(t, reason)
			} else {
				require.Empty(t, reason)
			}
		})
	}
}
