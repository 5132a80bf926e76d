// Package meaning holds the interpretive text for a transformation landing in
// a palace. The default knowledge base is embedded; markdown or YAML files on
// disk can be layered on top of it.
package meaning

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"ziwei/internal/chart"
	"ziwei/internal/parser"
)

//go:embed kb/*.yaml
var embedded embed.FS

var (
	ErrLookupMiss   = errors.New("no meaning for transformation and palace")
	ErrInvalidEntry = errors.New("invalid meaning entry")
)

type Key struct {
	Transformation chart.TransformationKey
	Palace         chart.PalaceName
}

func (k Key) String() string {
	return k.Transformation.Label() + "@" + string(k.Palace)
}

type Entry struct {
	Transformation chart.TransformationKey
	Palace         chart.PalaceName
	Paragraphs     []string
	Takeaways      []string
	Source         string
}

type KnowledgeBase struct {
	entries map[Key]Entry
}

type kbFile struct {
	Transformation string             `yaml:"transformation"`
	Entries        map[string]kbEntry `yaml:"entries"`
}

type kbEntry struct {
	Paragraphs []string `yaml:"paragraphs"`
	Takeaways  []string `yaml:"takeaways"`
}

func New() *KnowledgeBase {
	return &KnowledgeBase{entries: make(map[Key]Entry)}
}

// Default returns a fresh copy of the embedded knowledge base.
func Default() (*KnowledgeBase, error) {
	sub, err := fs.Sub(embedded, "kb")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads every *.yaml file at the root of fsys.
func Load(fsys fs.FS) (*KnowledgeBase, error) {
	matches, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	kb := New()
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		if err := kb.addYAML(name, data); err != nil {
			return nil, err
		}
	}
	return kb, nil
}

// LoadDir walks root for meaning files. Markdown files need `type: meaning`
// frontmatter with `transformation` and `palace` fields; the body becomes the
// paragraphs. YAML files use the embedded layout. Other markdown is skipped.
func LoadDir(root string) (*KnowledgeBase, error) {
	kb := New()
	err := filepath.WalkDir(filepath.Clean(root), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return kb.addYAML(path, data)
		case ".md":
			doc, err := parser.ParseFile(path)
			if errors.Is(err, parser.ErrNoFrontmatter) || errors.Is(err, parser.ErrMissingType) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			if doc.Kind != parser.KindMeaning {
				return nil
			}
			return kb.addDocument(doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return kb, nil
}

func (kb *KnowledgeBase) addYAML(source string, data []byte) error {
	var file kbFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntry, source, err)
	}
	key, err := chart.ParseTransformationKey(file.Transformation)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntry, source, err)
	}
	for palace, e := range file.Entries {
		name, err := chart.ParsePalaceName(palace)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidEntry, source, err)
		}
		if err := kb.Add(Entry{
			Transformation: key,
			Palace:         name,
			Paragraphs:     e.Paragraphs,
			Takeaways:      e.Takeaways,
			Source:         source,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (kb *KnowledgeBase) addDocument(doc *parser.Document) error {
	raw, err := doc.String("transformation")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntry, doc.SourceFile, err)
	}
	key, err := chart.ParseTransformationKey(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntry, doc.SourceFile, err)
	}
	raw, err = doc.String("palace")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntry, doc.SourceFile, err)
	}
	palace, err := chart.ParsePalaceName(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntry, doc.SourceFile, err)
	}
	takeaways, err := doc.Strings("takeaways")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntry, doc.SourceFile, err)
	}
	return kb.Add(Entry{
		Transformation: key,
		Palace:         palace,
		Paragraphs:     doc.Paragraphs(),
		Takeaways:      takeaways,
		Source:         doc.SourceFile,
	})
}

// Add stores an entry, replacing any existing entry for the same pair.
func (kb *KnowledgeBase) Add(e Entry) error {
	if len(e.Paragraphs) == 0 {
		return fmt.Errorf("%w: %s has no paragraphs", ErrInvalidEntry, Key{e.Transformation, e.Palace})
	}
	e.Paragraphs = slices.Clone(e.Paragraphs)
	e.Takeaways = slices.Clone(e.Takeaways)
	kb.entries[Key{Transformation: e.Transformation, Palace: e.Palace}] = e
	return nil
}

// Merge copies every entry of other into kb. Entries in other win.
func (kb *KnowledgeBase) Merge(other *KnowledgeBase) {
	if other == nil {
		return
	}
	for key, e := range other.entries {
		kb.entries[key] = e
	}
}

// Lookup returns the entry for a pair. The returned slices are copies.
func (kb *KnowledgeBase) Lookup(key chart.TransformationKey, palace chart.PalaceName) (Entry, error) {
	e, ok := kb.entries[Key{Transformation: key, Palace: palace}]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrLookupMiss, Key{key, palace})
	}
	e.Paragraphs = slices.Clone(e.Paragraphs)
	e.Takeaways = slices.Clone(e.Takeaways)
	return e, nil
}

func (kb *KnowledgeBase) Len() int {
	return len(kb.entries)
}

// Coverage lists the pairs with no entry, in canonical transformation order
// and then palace order.
func (kb *KnowledgeBase) Coverage() []Key {
	var missing []Key
	for _, key := range chart.TransformationKeys {
		for _, palace := range chart.PalaceNames {
			k := Key{Transformation: key, Palace: palace}
			if _, ok := kb.entries[k]; !ok {
				missing = append(missing, k)
			}
		}
	}
	return missing
}
