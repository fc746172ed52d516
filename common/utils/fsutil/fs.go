package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/gabriel-vasile/mimetype"
)

// DetectFileExt sniffs the file content and returns an extension with a
// leading dot, or "" when the type is unknown.
func DetectFileExt(fp string) string {
	mt, err := mimetype.DetectFile(fp)
	if err != nil {
		return ""
	}
	return mt.Extension()
}

// PartSuffix marks a file that is still being written.
const PartSuffix = ".part"

// PartFile is written under target+PartSuffix and moved to its final name
// by Commit. Discard drops it.
type PartFile struct {
	*os.File
	target string
}

// CreatePart creates the part file for target, making parent directories
// as needed.
func CreatePart(target string) (*PartFile, error) {
	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return nil, err
	}
	f, err := os.Create(target + PartSuffix)
	if err != nil {
		return nil, err
	}
	return &PartFile{File: f, target: target}, nil
}

// Discard closes and removes the part file.
func (p *PartFile) Discard() error {
	closeErr := p.Close()
	if err := os.Remove(p.Name()); err != nil && !os.IsNotExist(err) {
		return err
	}
	if errors.Is(closeErr, os.ErrClosed) {
		return nil
	}
	return closeErr
}

// Commit closes the part file and renames it to the target. A target
// without an extension gets one sniffed from the content, and a target
// that already exists is given a free numbered name instead. It returns
// the final path.
func (p *PartFile) Commit() (string, error) {
	if err := p.Close(); err != nil {
		p.Discard()
		return "", err
	}
	target := p.target
	if filepath.Ext(target) == "" {
		target += DetectFileExt(p.Name())
	}
	target = UniquePath(target)
	if err := os.Rename(p.Name(), target); err != nil {
		p.Discard()
		return "", err
	}
	return target, nil
}

// UniquePath returns fp when nothing exists there, otherwise the first
// free "name (n).ext" next to it.
func UniquePath(fp string) string {
	if !fileutil.IsExist(fp) {
		return fp
	}
	ext := filepath.Ext(fp)
	stem := strings.TrimSuffix(fp, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !fileutil.IsExist(candidate) {
			return candidate
		}
	}
}

const invalidPathChars = `<>:"/\|?*`

// NormalizePathname turns an arbitrary remote name into a single safe path
// segment. Trailing dots, spaces and control characters are dropped; other
// reserved or control characters become underscores.
func NormalizePathname(name string) string {
	name = strings.TrimRightFunc(name, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r) || unicode.IsControl(r)
	})
	name = strings.TrimLeftFunc(name, unicode.IsSpace)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(invalidPathChars, r) {
			return '_'
		}
		return r
	}, name)
}
