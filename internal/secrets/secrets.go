// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported key files: mistral-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultDir is the secrets directory relative to the working directory.
	DefaultDir = ".secrets"

	// MistralKeyFile names the file holding the OCR API key.
	MistralKeyFile = "mistral-api-key"

	// MistralKeyEnv is the conventional environment variable for the key.
	MistralKeyEnv = "MISTRAL_API_KEY"
)

// Source reports where a resolved key came from.
type Source string

const (
	SourceNone   Source = ""
	SourceConfig Source = "config"
	SourceEnv    Source = "env"
	SourceFile   Source = "file"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, log logrus.FieldLogger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.WithError(err).WithField("secret", name).Warn("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ResolveAPIKey picks the OCR API key: configured (flag, OCRMARK_API_KEY or
// config file) first, then MISTRAL_API_KEY, then the mistral-api-key file
// in dir. It returns SourceNone and an empty key when nothing is set.
func ResolveAPIKey(configured, dir string, log logrus.FieldLogger) (string, Source, error) {
	if key := strings.TrimSpace(configured); key != "" {
		return key, SourceConfig, nil
	}
	if key := strings.TrimSpace(os.Getenv(MistralKeyEnv)); key != "" {
		return key, SourceEnv, nil
	}

	secrets, err := Load(dir, log)
	if err != nil {
		return "", SourceNone, err
	}
	if key := secrets[MistralKeyFile]; key != "" {
		return key, SourceFile, nil
	}
	return "", SourceNone, nil
}
