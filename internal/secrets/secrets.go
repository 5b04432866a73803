// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials from a directory of plain-text files.
// The filename is the key name and the trimmed contents are the value.
//
// Known key files: bungie-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/sparos/internal/logging"
)

const (
	// DefaultDir is where the CLI looks for secrets.
	DefaultDir = ".secrets"

	// BungieAPIKey is the file holding the Bungie.net application key.
	BungieAPIKey = "bungie-api-key"
)

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty map. Unreadable files are logged and skipped.
func Load(dir string, log logrus.FieldLogger) (map[string]string, error) {
	log = logging.OrDiscard(log)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	found := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.WithField("secret", name).WithError(err).Warn("could not read secret")
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			found[name] = value
		}
	}
	log.WithFields(logrus.Fields{"dir": dir, "count": len(found)}).Debug("secrets loaded")
	return found, nil
}

// ResolveAPIKey returns explicit when it is set and otherwise falls back
// to the bungie-api-key file in dir. An empty result is not an error; the
// Bungie API rejects the request instead.
func ResolveAPIKey(explicit, dir string, log logrus.FieldLogger) (string, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}
	found, err := Load(dir, log)
	if err != nil {
		return "", err
	}
	key := found[BungieAPIKey]
	if key == "" {
		logging.OrDiscard(log).WithField("dir", dir).Warn("no Bungie API key configured")
	}
	return key, nil
}
