package markdown

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const separator = "---\n"

// SplitFrontmatter separates a leading YAML block from the body. Content
// without a block yields empty metadata.
func SplitFrontmatter(content string) (map[string]any, string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, separator) {
		return map[string]any{}, content, nil
	}
	rest := strings.TrimPrefix(content, separator)
	var raw, body string
	switch {
	case strings.HasPrefix(rest, separator):
		body = strings.TrimPrefix(rest, separator)
	default:
		idx := strings.Index(rest, "\n---\n")
		if idx < 0 {
			if !strings.HasSuffix(rest, "\n---") {
				return nil, "", fmt.Errorf("invalid frontmatter: missing closing separator")
			}
			idx = len(rest) - len("\n---")
			rest += "\n"
		}
		raw = rest[:idx]
		body = rest[idx+len("\n---\n"):]
	}

	decoded := map[string]any{}
	if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	if decoded == nil {
		decoded = map[string]any{}
	}
	return decoded, body, nil
}

func RenderFrontmatter(meta map[string]any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(body)
	return buf.String(), nil
}

// String reads a scalar as text.
func String(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func Float(meta map[string]any, key string) float64 {
	switch x := meta[key].(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float64:
		return x
	case float32:
		return float64(x)
	case string:
		out, _ := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return out
	default:
		return 0
	}
}

func Int(meta map[string]any, key string) int {
	return int(Float(meta, key))
}

// Time reads an RFC 3339 timestamp; yaml may already have decoded it.
func Time(meta map[string]any, key string) time.Time {
	switch x := meta[key].(type) {
	case time.Time:
		return x
	case string:
		parsed, err := time.Parse(time.RFC3339, x)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}
