// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads upstream credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key name and the
// trimmed contents are the value.
//
// Recognized key files: anthropic-api-key, openai-api-key, tertiary-api-key,
// tavily-api-key, brave-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/pkg/types"
)

// DefaultDir is where the CLI looks for secrets.
const DefaultDir = ".secrets"

// Key file names.
const (
	AnthropicKey = "anthropic-api-key"
	OpenAIKey    = "openai-api-key"
	TertiaryKey  = "tertiary-api-key"
	TavilyKey    = "tavily-api-key"
	BraveKey     = "brave-api-key"
)

// Secrets maps key file names to values.
type Secrets map[string]string

// Load reads all files in dir. A missing directory is not an error and
// yields an empty set. Unreadable files are logged and skipped.
func Load(dir string, log *logrus.Logger) (Secrets, error) {
	log = logging.OrDiscard(log)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
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

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Keys returns the loaded key names in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fill sets every empty credential in cfg from s and returns the key names
// it used. Values already set in cfg win. The search key file follows
// cfg.Search.Provider.
func (s Secrets) Fill(cfg *types.Config) []string {
	var used []string
	set := func(dst *string, key string) {
		if *dst != "" {
			return
		}
		if v, ok := s[key]; ok {
			*dst = v
			used = append(used, key)
		}
	}

	set(&cfg.Primary.APIKey, AnthropicKey)
	set(&cfg.Secondary.APIKey, OpenAIKey)
	set(&cfg.Tertiary.APIKey, TertiaryKey)

	switch strings.ToLower(cfg.Search.Provider) {
	case "", "tavily":
		set(&cfg.Search.APIKey, TavilyKey)
	case "brave":
		set(&cfg.Search.APIKey, BraveKey)
	}
	return used
}
