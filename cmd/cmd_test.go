package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vyomadl/vyoma-dl/config"
	"github.com/vyomadl/vyoma-dl/core"
	"github.com/vyomadl/vyoma-dl/ledger"
	"github.com/vyomadl/vyoma-dl/pkg/enums/linktype"
	"github.com/vyomadl/vyoma-dl/pkg/sitetest"
	"github.com/vyomadl/vyoma-dl/session"
)

func testContext() context.Context {
	logger := log.NewWithOptions(io.Discard, log.Options{ReportTimestamp: false})
	return log.WithContext(context.Background(), logger)
}

// loadConfig points HOME at a temp dir and loads an explicit config file.
func loadConfig(t *testing.T, content string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"VYOMA_USERNAME", "VYOMA_USER", "VYOMA_PASSWORD", "VYOMA_PASS"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(home, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := config.Init(testContext(), path); err != nil {
		t.Fatalf("config.Init: %v", err)
	}
	return home
}

func TestResolveCredentials(t *testing.T) {
	tests := []struct {
		name         string
		config       string
		saved        string
		input        string
		wantUser     string
		wantPass     string
		wantPrompted bool
		wantErr      error
	}{
		{
			name:     "config wins over saved file",
			config:   "username = \"cfg\"\npassword = \"cfgpass\"\n",
			saved:    "username = saved\npassword = savedpass\n",
			wantUser: "cfg",
			wantPass: "cfgpass",
		},
		{
			name:     "saved file fills the gaps",
			config:   "username = \"cfg\"\n",
			saved:    "username = saved\npassword = a=b\n",
			wantUser: "cfg",
			wantPass: "a=b",
		},
		{
			name:         "prompt when nothing is configured",
			input:        "  alice \nsecret\n",
			wantUser:     "alice",
			wantPass:     "secret",
			wantPrompted: true,
		},
		{
			name:         "prompted password keeps spaces",
			input:        "alice\n secret \r\n",
			wantUser:     "alice",
			wantPass:     " secret ",
			wantPrompted: true,
		},
		{
			name:         "empty answers",
			input:        "\n\n",
			wantPrompted: true,
			wantErr:      session.ErrEmptyCredentials,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := loadConfig(t, tt.config)
			credsFile := filepath.Join(home, ".vyoma.cnf")
			if tt.saved != "" {
				if err := os.WriteFile(credsFile, []byte(tt.saved), 0o600); err != nil {
					t.Fatal(err)
				}
			}
			var out bytes.Buffer
			p := newPrompter(strings.NewReader(tt.input), &out)
			creds, prompted, err := resolveCredentials(p, credsFile)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if prompted != tt.wantPrompted {
				t.Errorf("prompted = %v, want %v", prompted, tt.wantPrompted)
			}
			if tt.wantErr != nil {
				return
			}
			if creds.Username != tt.wantUser || creds.Password != tt.wantPass {
				t.Errorf("creds = %q/%q, want %q/%q", creds.Username, creds.Password, tt.wantUser, tt.wantPass)
			}
			if prompted && !strings.Contains(out.String(), "Password: ") {
				t.Errorf("prompt output = %q", out.String())
			}
		})
	}
}

func TestOfferToSave(t *testing.T) {
	creds := session.Credentials{Username: "alice", Password: "secret"}
	for _, tc := range []struct {
		input string
		saved bool
	}{
		{"\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"", false},
	} {
		path := filepath.Join(t.TempDir(), ".vyoma.cnf")
		p := newPrompter(strings.NewReader(tc.input), io.Discard)
		if err := offerToSave(p, path, creds); err != nil {
			t.Fatalf("offerToSave(%q): %v", tc.input, err)
		}
		user, pass, err := config.ReadCredentials(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := user == "alice" && pass == "secret"; got != tc.saved {
			t.Errorf("answer %q: saved = %v, want %v", tc.input, got, tc.saved)
		}
	}
}

func TestSelection(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		c := &cobra.Command{}
		c.Flags().BoolP("document", "d", false, "")
		c.Flags().BoolP("audio", "a", false, "")
		c.Flags().BoolP("video", "v", false, "")
		if err := c.Flags().Parse(args); err != nil {
			t.Fatal(err)
		}
		return c
	}
	if got := selection(newCmd()); got != core.SelectAll() {
		t.Errorf("no flags = %+v, want all", got)
	}
	if got := selection(newCmd("-a")); got != (core.Selection{Audio: true}) {
		t.Errorf("-a = %+v", got)
	}
	if got := selection(newCmd("-d", "-v")); got != (core.Selection{Document: true, Video: true}) {
		t.Errorf("-d -v = %+v", got)
	}
}

func TestEncode(t *testing.T) {
	summary := &core.StatusSummary{
		CourseID: "c1",
		Title:    "Course One",
		Types:    []core.TypeStatus{{Type: linktype.Document, Total: 4, Downloaded: 1, Percent: 25}},
	}
	var buf bytes.Buffer
	ok, err := encode(&buf, formatJSON, summary)
	if !ok || err != nil {
		t.Fatalf("json: ok=%v err=%v", ok, err)
	}
	var decoded core.StatusSummary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Types[0].Percent != 25 || decoded.CourseID != "c1" {
		t.Errorf("decoded = %+v", decoded)
	}

	buf.Reset()
	if ok, err := encode(&buf, formatYAML, summary); !ok || err != nil {
		t.Fatalf("yaml: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(buf.String(), "course_id: c1") {
		t.Errorf("yaml = %q", buf.String())
	}

	if ok, _ := encode(&buf, formatTable, summary); ok {
		t.Error("table should not be encoded")
	}
	if err := checkFormat("xml"); err == nil {
		t.Error("checkFormat(xml) should fail")
	}
}

func TestRenderReport(t *testing.T) {
	r := &core.Report{
		Title:      "Course One",
		Dir:        "/tmp/c1",
		VideoLinks: 2,
		Types: []core.TypeReport{
			{Type: linktype.Document, Total: 3, Downloaded: 1, AlreadyComplete: 1, Skipped: 1, SkippedURLs: []string{"https://x/bad.pdf"}},
			{Type: linktype.Audio},
		},
		Canceled: true,
	}
	var buf bytes.Buffer
	renderReport(&buf, r)
	out := buf.String()
	for _, want := range []string{"Course One", "Document", "Audio", "https://x/bad.pdf", "2 video links", "Interrupted"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		resetFlags(rootCmd)
		resetFlags(statusCmd)
		resetFlags(historyCmd)
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSyncStatusHistory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"VYOMA_USERNAME", "VYOMA_USER", "VYOMA_PASSWORD", "VYOMA_PASS"} {
		t.Setenv(k, "")
	}
	site := sitetest.New(t)
	site.AddFile("l1.pdf", sitetest.File{Body: []byte("%PDF-1.4 one")})
	site.AddFile("a1.mp3", sitetest.File{Body: []byte("ID3 audio")})
	site.AddCourse(&sitetest.Course{
		ID:         "gita",
		Title:      "Bhagavad Gita",
		Teacher:    "Guru",
		Subscribed: true,
		Links: []sitetest.Link{
			{Class: "document", Href: site.FileURL("l1.pdf")},
			{Class: "audio", Href: site.FileURL("a1.mp3")},
			{Class: "video", Href: "https://www.youtube.com/watch?v=abc"},
		},
	})
	out := filepath.Join(home, "downloads")
	cfgPath := filepath.Join(home, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("progress = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	common := []string{
		"-c", cfgPath,
		"-u", sitetest.Username,
		"-p", sitetest.Password,
		"-o", out,
		"--base-url", site.URL(),
		"--db-path", filepath.Join(home, "history.db"),
		"--log-level", "error",
	}

	stdout, err := execute(t, append([]string{site.CourseURL("gita")}, common...)...)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !strings.Contains(stdout, "Bhagavad Gita") {
		t.Errorf("sync output = %q", stdout)
	}
	dir := filepath.Join(out, "gita")
	for _, name := range []string{"document/l1.pdf", "audio/a1.mp3", "description.html", "video_links.txt", ledger.FileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	stdout, err = execute(t, append([]string{"status", "gita", "--format", "json"}, common...)...)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var summary core.StatusSummary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("status output %q: %v", stdout, err)
	}
	if len(summary.Types) != 3 || summary.Types[0].Percent != 100 || summary.Types[1].Percent != 100 {
		t.Errorf("status = %+v", summary)
	}

	stdout, err = execute(t, append([]string{"history", "gita", "--format", "json"}, common...)...)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []historyEntry
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("history output %q: %v", stdout, err)
	}
	if len(runs) != 1 || runs[0].Downloaded != 2 || runs[0].NewLinks != 3 {
		t.Errorf("history = %+v", runs)
	}
	if _, err := time.Parse("2006-01-02 15:04:05", runs[0].StartedAt); err != nil {
		t.Errorf("started_at = %q", runs[0].StartedAt)
	}
}
