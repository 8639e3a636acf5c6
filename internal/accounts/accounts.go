// Package accounts loads per-account publishing profiles from YAML files.
//
// Each account lives in its own file under the configured accounts directory,
// named <account_id>.yaml. A profile carries the account's writing style and
// an optional topic bank of evergreen material used when hot topics run short.
package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// WritingStyle describes the voice a profile writes in. Keywords steer hot
// topic matching; domain and persona feed prompt construction.
type WritingStyle struct {
	Domain   string   `yaml:"domain"`
	Persona  string   `yaml:"persona"`
	Tone     string   `yaml:"tone"`
	Audience string   `yaml:"audience"`
	Keywords []string `yaml:"keywords"`
}

// BankGroup is one themed cluster of evergreen writing material.
type BankGroup struct {
	Theme     string   `yaml:"theme"`
	Problems  []string `yaml:"problems"`
	Scenes    []string `yaml:"scenes"`
	Conflicts []string `yaml:"conflicts"`
	Actions   []string `yaml:"actions"`
	Titles    []string `yaml:"titles"`
}

// Profile is one account's full configuration.
type Profile struct {
	AccountID string       `yaml:"account_id"`
	Name      string       `yaml:"name"`
	Platform  string       `yaml:"platform"`
	Style     WritingStyle `yaml:"writing_style"`
	Bank      []BankGroup  `yaml:"topic_bank"`
}

// MatchWords returns the terms used to score hot topics for this profile:
// explicit keywords, the domain, and multi-rune persona words.
func (p *Profile) MatchWords() []string {
	words := make([]string, 0, len(p.Style.Keywords)+4)
	words = append(words, p.Style.Keywords...)
	if p.Style.Domain != "" {
		words = append(words, p.Style.Domain)
	}
	for _, w := range strings.Fields(p.Style.Persona) {
		if len([]rune(w)) >= 2 {
			words = append(words, w)
		}
	}
	out := words[:0]
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// BankTitles flattens the bank's ready-made titles in declaration order,
// dropping blanks and duplicates.
func (p *Profile) BankTitles() []string {
	seen := make(map[string]struct{})
	var titles []string
	for _, group := range p.Bank {
		for _, title := range group.Titles {
			title = strings.TrimSpace(title)
			if title == "" {
				continue
			}
			if _, ok := seen[title]; ok {
				continue
			}
			seen[title] = struct{}{}
			titles = append(titles, title)
		}
	}
	return titles
}

// Load reads a single profile file and validates its identity fields.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if strings.TrimSpace(profile.AccountID) == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		profile.AccountID = base
	}
	if profile.Platform == "" {
		profile.Platform = "wechat_mp"
	}
	return &profile, nil
}

// LoadDir reads every *.yaml / *.yml profile under dir, sorted by account id.
// A missing directory yields an empty slice; a malformed profile is an error
// since silently skipping an account would drop its scheduled output.
func LoadDir(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read accounts directory: %w", err)
	}
	var profiles []*Profile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		profile, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].AccountID < profiles[j].AccountID
	})
	return profiles, nil
}

// Find returns the profile with the given account id from dir.
func Find(dir, accountID string) (*Profile, error) {
	profiles, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, profile := range profiles {
		if profile.AccountID == accountID {
			return profile, nil
		}
	}
	return nil, fmt.Errorf("account %q: %w", accountID, ErrNotFound)
}

// ErrNotFound reports a profile lookup miss.
var ErrNotFound = errors.New("profile not found")
