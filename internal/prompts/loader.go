// Package prompts loads the LLM prompt templates embedded in the binary.
// Each JSON file maps a prompt key to a text/template body.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed *.json
var promptFiles embed.FS

// Deliverables is the prompt file used for deliverable generation.
const Deliverables = "deliverables.json"

// Prompt keys in Deliverables.
const (
	KeySystem           = "system"
	KeyBuildDeliverable = "build-deliverable"
	KeyChainStep        = "chain-step"
)

var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get returns the prompt stored under key in filename.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is like Get but panics when the prompt is missing.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format executes body as a text/template against data. Placeholders use
// the {{.Key}} form; data may be a map or a struct.
func Format(body string, data any) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=zero").Parse(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return b.String(), nil
}

// Render loads a prompt and formats it in one call.
func Render(filename, key string, data any) (string, error) {
	body, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	return Format(body, data)
}

// List returns the prompt keys in filename, sorted.
func List(filename string) ([]string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// ClearCache drops every parsed prompt file.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()
	return prompts, nil
}
