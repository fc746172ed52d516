package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/vyomadl/vyoma-dl/logger"
	"github.com/vyomadl/vyoma-dl/pkg/enums/linktype"
)

const (
	// FileName is the ledger file inside a course directory.
	FileName = ".progress.json"
	// DateLayout formats completion dates.
	DateLayout = "2006.01.02"
)

var ErrSchema = errors.New("invalid progress ledger")

// Ledger maps resource URLs to their download state for one course.
type Ledger struct {
	entries map[string]Link
	logger  logger.Logger
}

func New(l logger.Logger) *Ledger {
	if l == nil {
		l = logger.Discard()
	}
	return &Ledger{entries: make(map[string]Link), logger: l}
}

// Load reads the ledger at path. A missing file gives an empty ledger. An
// unreadable or malformed file is logged and also gives an empty ledger,
// so a damaged file never stops a run.
func Load(path string, l logger.Logger) *Ledger {
	led := New(l)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			led.logger.Warn("Could not read progress file, starting fresh", "path", path, "error", err)
		}
		return led
	}
	entries, err := decode(data)
	if err != nil {
		led.logger.Warn("Progress file is corrupted, starting fresh", "path", path, "error", err)
		return led
	}
	for url, link := range entries {
		if link.Complete && link.Path == "" {
			led.logger.Debug("Completed entry has no path", "url", url)
			link = link.demoted()
		}
		led.entries[url] = link
	}
	led.logger.Verbose("Loaded progress", "path", path, "entries", len(led.entries))
	return led
}

func decode(data []byte) (map[string]Link, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: top level is not an object", ErrSchema)
	}
	entries := make(map[string]Link, len(raw))
	for key, msg := range raw {
		var link Link
		if err := json.Unmarshal(msg, &link); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %w", ErrSchema, key, err)
		}
		if !link.Type.IsValid() {
			return nil, fmt.Errorf("%w: entry %q has unknown type %q", ErrSchema, key, link.Type)
		}
		link.URL = key
		entries[key] = link
	}
	return entries, nil
}

// Merge adds every URL not yet tracked as a fresh incomplete entry. Known
// entries are left untouched. It returns the number of entries added.
func (l *Ledger) Merge(links map[linktype.LinkType][]string) int {
	added := 0
	for _, t := range linktype.Values() {
		for _, url := range links[t] {
			if _, ok := l.entries[url]; ok {
				continue
			}
			l.entries[url] = newLink(url, t)
			added++
		}
	}
	if added > 0 {
		l.logger.Verbose("New links found", "count", added)
	}
	return added
}

// Reconcile returns the entry for url, first demoting it when it claims
// completion but its file is gone. Unknown urls yield false.
func (l *Ledger) Reconcile(url string) (Link, bool) {
	link, ok := l.entries[url]
	if !ok {
		return Link{}, false
	}
	if link.Complete && !fileutil.IsExist(link.Path) {
		l.logger.Info("Downloaded file is missing, will fetch again", "path", link.Path)
		link = link.demoted()
		l.entries[url] = link
	}
	return link, true
}

// MarkComplete records a finished download. Unknown urls are ignored.
func (l *Ledger) MarkComplete(url, path, date string) (Link, bool) {
	link, ok := l.entries[url]
	if !ok {
		return Link{}, false
	}
	link.Path = path
	link.Date = date
	link.Complete = true
	l.entries[url] = link
	return link, true
}

func (l *Ledger) Get(url string) (Link, bool) {
	link, ok := l.entries[url]
	return link, ok
}

func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns a copy of every entry ordered by url.
func (l *Ledger) Entries() []Link {
	out := make([]Link, 0, len(l.entries))
	for _, link := range l.entries {
		out = append(out, link)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// Save writes the ledger atomically: a temporary file in the same
// directory is renamed over path.
func (l *Ledger) Save(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l.entries); err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create progress directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp progress file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close progress: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}
