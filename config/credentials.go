package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const legacyCredentialsName = ".vyoma.cnf"

// CredentialsFile is the plain `key = value` file holding saved
// credentials.
func CredentialsFile() string {
	return filepath.Join(homeDir(), legacyCredentialsName)
}

// ReadCredentials parses a credentials file. A missing file yields empty
// values and no error.
func ReadCredentials(path string) (username, password string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("read credentials file: %w", err)
	}
	values := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		// only the single space written after "=" is a separator
		value = strings.TrimPrefix(value, " ")
		if key != "password" {
			value = strings.TrimSpace(value)
		}
		values[key] = value
	}
	if err := sc.Err(); err != nil {
		return "", "", fmt.Errorf("parse credentials file: %w", err)
	}
	return values["username"], values["password"], nil
}

// WriteCredentials stores the credentials readable by the owner only.
func WriteCredentials(path, username, password string) error {
	content := fmt.Sprintf("username = %s\npassword = %s\n", username, password)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(path, 0o600)
}
