package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/vyomadl/vyoma-dl/pkg/enums/linktype"
)

const (
	descriptionFile = "description.html"
	skippedFile     = "skipped_links.txt"
)

func linksFile(t linktype.LinkType) string {
	return string(t) + "_links.txt"
}

func writeManifest(dir, name, content string) error {
	if err := fileutil.WriteStringToFile(filepath.Join(dir, name), content, false); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func writeLines(dir, name string, lines []string) error {
	return writeManifest(dir, name, strings.Join(lines, "\n"))
}
