package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"version", "--short"}, Version + "\n"},
		{[]string{"version"}, "nativevideo-host " + Version},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(tt.args)
		if err := Execute(); err != nil {
			t.Fatalf("Execute(%v): %v", tt.args, err)
		}
		if !strings.HasPrefix(out.String(), tt.want) {
			t.Errorf("%v: got %q, want prefix %q", tt.args, out.String(), tt.want)
		}
		versionCmd.Flags().Set("short", "false")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("host:\n  addr: :7000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(&serveOptions{configPath: path})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Host.Addr != ":7000" {
		t.Errorf("addr: got %q", cfg.Host.Addr)
	}

	if _, err := loadConfig(&serveOptions{configPath: filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Error("explicit missing config should fail")
	}
}
