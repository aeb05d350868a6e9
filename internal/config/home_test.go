package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestGetHomeWithEnvVar tests FILEAGENT_HOME takes precedence and is created
func TestGetHomeWithEnvVar(t *testing.T) {
	customHome := filepath.Join(t.TempDir(), "agent-home")
	t.Setenv(HomeEnv, customHome)

	home, err := GetHome()
	if err != nil {
		t.Fatalf("GetHome() error = %v", err)
	}
	if home != customHome {
		t.Errorf("GetHome() = %q, want %q", home, customHome)
	}
	if info, err := os.Stat(home); err != nil || !info.IsDir() {
		t.Errorf("home directory not created: %q", home)
	}
}

func TestGetHomeDefault(t *testing.T) {
	userHome := t.TempDir()
	t.Setenv(HomeEnv, "")
	t.Setenv("HOME", userHome)

	home, err := GetHome()
	if err != nil {
		t.Fatalf("GetHome() error = %v", err)
	}
	if want := filepath.Join(userHome, ".fileagent"); home != want {
		t.Errorf("GetHome() = %q, want %q", home, want)
	}
}

func TestDerivedPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)
	cfg := DefaultConfig()

	db, err := cfg.HistoryDBPath()
	if err != nil || db != filepath.Join(home, "history.db") {
		t.Errorf("HistoryDBPath() = %q, %v", db, err)
	}
	logs, err := cfg.LogDirectory()
	if err != nil || logs != filepath.Join(home, "logs") {
		t.Errorf("LogDirectory() = %q, %v", logs, err)
	}

	cfg.History.DBPath = "/data/chat.db"
	cfg.LogDir = "/var/log/fileagent"
	if db, _ := cfg.HistoryDBPath(); db != "/data/chat.db" {
		t.Errorf("HistoryDBPath() = %q, want configured path", db)
	}
	if logs, _ := cfg.LogDirectory(); logs != "/var/log/fileagent" {
		t.Errorf("LogDirectory() = %q, want configured path", logs)
	}
}

func TestQuickRoots(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.QuickDirs = []string{"Documents", "/srv/shared"}

	got := cfg.QuickRoots("/home/ana", "/home/ana/project")
	want := []string{"/home/ana/Documents", "/srv/shared", "/home/ana/project"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QuickRoots() = %v, want %v", got, want)
	}
}

func TestResolveWorkDir(t *testing.T) {
	cfg := DefaultConfig()
	cwd, _ := os.Getwd()

	if got, err := cfg.ResolveWorkDir(); err != nil || got != cwd {
		t.Errorf("ResolveWorkDir() = %q, %v, want %q", got, err, cwd)
	}

	dir := t.TempDir()
	cfg.WorkDir = dir
	if got, _ := cfg.ResolveWorkDir(); got != dir {
		t.Errorf("ResolveWorkDir() = %q, want %q", got, dir)
	}
}
