// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed file
// contents are the value. Recognised files are pubmed-api-key and pubmed-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Well-known secret file names.
const (
	APIKeyFile = "pubmed-api-key"
	EmailFile  = "pubmed-email"
)

// Secrets maps secret file names to their values.
type Secrets map[string]string

// Get returns the named secret, or "" when absent. It is safe on a nil Secrets.
func (s Secrets) Get(name string) string {
	return s[name]
}

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty Secrets. Unreadable files are logged and
// skipped.
func Load(dir string, logger *logrus.Logger) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.WithError(err).WithField("secret", name).Warn("Could not read secret")
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}
