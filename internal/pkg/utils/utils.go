// Package utils carries small helpers shared across the command tree.
package utils

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
)

// appNameRegex keeps application names safe to use as pod name prefixes,
// label values and directory names.
var appNameRegex = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

const maxAppNameLength = 40

// VerifyAppName validates a user supplied application name.
func VerifyAppName(name string) error {
	if name == "" {
		return fmt.Errorf("application name must not be empty")
	}

	if len(name) > maxAppNameLength {
		return fmt.Errorf("application name %q is too long (max %d characters)", name, maxAppNameLength)
	}

	if !appNameRegex.MatchString(name) {
		return fmt.Errorf("application name %q is invalid: use lowercase alphanumerics and '-', starting and ending with an alphanumeric", name)
	}

	return nil
}

// ParseKeyValues parses "key=value" items into a map. Items may themselves
// be comma separated lists.
func ParseKeyValues(items []string) (map[string]string, error) {
	out := map[string]string{}

	for _, item := range items {
		for pair := range strings.SplitSeq(item, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}

			key, value, found := strings.Cut(pair, "=")
			if !found || strings.TrimSpace(key) == "" {
				return nil, fmt.Errorf("invalid key=value pair: %q", pair)
			}

			out[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	return out, nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// CopyMap shallow-copies a string-keyed map.
func CopyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

// ExtractMapKeys returns the keys of m in unspecified order.
func ExtractMapKeys[M ~map[K]V, K comparable, V any](m M) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	return keys
}

// FlattenArray flattens a slice of slices preserving order.
func FlattenArray[T any](in [][]T) []T {
	var out []T
	for _, inner := range in {
		out = append(out, inner...)
	}

	return out
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// Retry runs fn up to count times, sleeping interval between attempts.
// shouldRetry, when non-nil, can stop early by returning false for an error.
func Retry(count int, interval time.Duration, shouldRetry func(error) bool, fn func() error) error {
	var err error

	for attempt := 1; attempt <= count; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}

		if attempt < count {
			logger.Infof("Attempt %d/%d failed: %v. Retrying in %s...\n", attempt, count, err, interval)
			time.Sleep(interval)
		}
	}

	return fmt.Errorf("all %d attempts failed, last error: %w", count, err)
}

// ConfirmAction prompts on stdout and reads a y/N answer from stdin.
func ConfirmAction(prompt string) (bool, error) {
	fmt.Print(prompt + "(y/N): ")

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes", nil
}
