package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	KindProfile = "profile"
	KindMeaning = "meaning"
)

type Document struct {
	Frontmatter map[string]any
	Title       string
	Kind        string
	Tags        []string
	Body        string
	SourceFile  string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingTitle  = errors.New("frontmatter missing required 'title' field")
	ErrMissingType   = errors.New("frontmatter missing required 'type' field")
	ErrMissingField  = errors.New("frontmatter missing field")
)

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

func Parse(content []byte) (*Document, error) {
	yamlBytes, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	var frontmatter map[string]any
	if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
		return nil, ErrInvalidYAML
	}

	title, ok := frontmatter["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return nil, ErrMissingTitle
	}

	kind, ok := frontmatter["type"].(string)
	if !ok || strings.TrimSpace(kind) == "" {
		return nil, ErrMissingType
	}

	tags, err := parseStrings("tags", frontmatter["tags"])
	if err != nil {
		return nil, err
	}

	return &Document{
		Frontmatter: frontmatter,
		Title:       strings.TrimSpace(title),
		Kind:        strings.ToLower(strings.TrimSpace(kind)),
		Tags:        tags,
		Body:        string(body),
	}, nil
}

// splitFrontmatter separates the leading "---" block from the body. The
// closing fence may end the file without a trailing newline.
func splitFrontmatter(content []byte) ([]byte, []byte, error) {
	text := bytes.ReplaceAll(bytes.TrimLeft(content, "\ufeff\n\r\t "), []byte("\r\n"), []byte("\n"))
	rest, ok := bytes.CutPrefix(text, []byte("---\n"))
	if !ok {
		return nil, nil, ErrNoFrontmatter
	}
	if yamlBytes, body, ok := bytes.Cut(rest, []byte("\n---\n")); ok {
		return yamlBytes, body, nil
	}
	if yamlBytes, ok := bytes.CutSuffix(bytes.TrimRight(rest, "\n"), []byte("\n---")); ok {
		return yamlBytes, nil, nil
	}
	// An empty frontmatter block closes immediately.
	if body, ok := bytes.CutPrefix(rest, []byte("---\n")); ok {
		return nil, body, nil
	}
	return nil, nil, ErrNoFrontmatter
}

// String returns a scalar frontmatter value as text. YAML may decode dates
// and numbers into other types, so those are formatted back.
func (d *Document) String(key string) (string, error) {
	value, ok := d.Frontmatter[key]
	if !ok || value == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case int:
		return strconv.Itoa(v), nil
	case time.Time:
		return v.Format(time.DateOnly), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func (d *Document) Int(key string) (int, error) {
	value, ok := d.Frontmatter[key]
	if !ok || value == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	switch v := value.(type) {
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}

func (d *Document) Strings(key string) ([]string, error) {
	return parseStrings(key, d.Frontmatter[key])
}

// Paragraphs splits the body on blank lines.
func (d *Document) Paragraphs() []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(d.Body, "\r\n", "\n"), "\n\n") {
		lines := strings.Fields(block)
		if len(lines) == 0 {
			continue
		}
		out = append(out, strings.Join(lines, " "))
	}
	return out
}

func parseStrings(key string, value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be strings", key)
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			items = append(items, s)
		}
		if len(items) == 0 {
			return nil, nil
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%s must be string or list of strings", key)
	}
}
