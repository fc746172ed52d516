package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

func testContext() context.Context {
	logger := log.NewWithOptions(io.Discard, log.Options{ReportTimestamp: false})
	return log.WithContext(context.Background(), logger)
}

func TestInitFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
username = "student"
download_dir = "/srv/vyoma"

[http]
timeout = 30
rate_limit = 2.5

[log]
level = "verbose"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VYOMA_PASS", "from-env")

	if err := Init(testContext(), path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	c := C()
	if c.Username != "student" || c.Password != "from-env" {
		t.Errorf("credentials = %q/%q", c.Username, c.Password)
	}
	if c.HTTP.Timeout != 30 || c.HTTP.RateLimit != 2.5 || c.HTTP.TimeoutDuration().Seconds() != 30 {
		t.Errorf("http = %+v", c.HTTP)
	}
	if c.Log.Level != "verbose" || !c.Progress {
		t.Errorf("log/progress = %+v/%v", c.Log, c.Progress)
	}
	if c.Site.BaseURL == "" {
		t.Error("site.base_url default missing")
	}
	if got := c.DownloadRoot("student"); got != "/srv/vyoma" {
		t.Errorf("DownloadRoot() = %q", got)
	}
}

func TestInitEnvPrecedence(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("username = \"file-user\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VYOMA_USERNAME", "env-user")
	if err := Init(testContext(), path); err != nil {
		t.Fatal(err)
	}
	if C().Username != "env-user" {
		t.Errorf("Username = %q; want env-user", C().Username)
	}
}

func TestInitInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[http]\ntimeout = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Init(testContext(), path); err == nil {
		t.Error("Init() accepted a negative timeout")
	}
	if err := Init(testContext(), filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Init() accepted a missing explicit config file")
	}
}

func TestDownloadRootDefault(t *testing.T) {
	c := &Config{}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got, want := c.DownloadRoot("student"), filepath.Join(home, "vyoma", "student"); got != want {
		t.Errorf("DownloadRoot() = %q; want %q", got, want)
	}
	c.DownloadDir = "~/courses"
	if got, want := c.DownloadRoot("student"), filepath.Join(home, "courses"); got != want {
		t.Errorf("DownloadRoot() = %q; want %q", got, want)
	}
}

func TestCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vyoma.cnf")

	user, pass, err := ReadCredentials(path)
	if err != nil || user != "" || pass != "" {
		t.Fatalf("ReadCredentials(missing) = %q, %q, %v", user, pass, err)
	}

	if err := WriteCredentials(path, "student", "p=ss word"); err != nil {
		t.Fatalf("WriteCredentials: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o; want 600", perm)
	}
	user, pass, err = ReadCredentials(path)
	if err != nil || user != "student" || pass != "p=ss word" {
		t.Errorf("ReadCredentials = %q, %q, %v", user, pass, err)
	}
}

func TestCredentialsKeepPasswordSpaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vyoma.cnf")
	for _, pass := range []string{" lead", "trail ", "  both  "} {
		if err := WriteCredentials(path, "student", pass); err != nil {
			t.Fatalf("WriteCredentials: %v", err)
		}
		_, got, err := ReadCredentials(path)
		if err != nil || got != pass {
			t.Errorf("ReadCredentials password = %q, %v; want %q", got, err, pass)
		}
	}
}

func TestReadCredentialsLenient(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vyoma.cnf")
	content := "# saved\n\n  Username =  someone  \ngarbage line\npassword=abc"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	user, pass, err := ReadCredentials(path)
	if err != nil || user != "someone" || pass != "abc" {
		t.Errorf("ReadCredentials = %q, %q, %v", user, pass, err)
	}
}
