// Package source turns JSON documents into store items.
//
// Input is either a JSON array or JSON lines (one value per line). Each
// value becomes an Item whose identity is read with a gjson path and whose
// content is the compacted raw JSON.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dshills/listsync/internal/identity"
)

// ErrInvalidJSON is returned for input that is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// Item is one JSON value.
type Item struct {
	// Raw is the compacted JSON text of the value.
	Raw string
	// ID is the raw JSON of the identity path, or Raw when the path is missing.
	ID string
}

// String returns the identity of the item.
func (i Item) String() string {
	return i.ID
}

// Get reads a gjson path from the item.
func (i Item) Get(path string) gjson.Result {
	return gjson.Get(i.Raw, path)
}

// NewItem builds an item from raw JSON. raw must be valid.
func NewItem(raw []byte, idPath string) Item {
	compact := string(pretty.Ugly(raw))
	item := Item{Raw: compact, ID: compact}
	if idPath != "" {
		if id := gjson.Get(compact, idPath); id.Exists() {
			item.ID = id.Raw
		}
	}
	return item
}

// Parse reads a JSON array or JSON lines into items.
func Parse(data []byte, idPath string) ([]Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' && gjson.ValidBytes(trimmed) {
		var items []Item
		gjson.ParseBytes(trimmed).ForEach(func(_, value gjson.Result) bool {
			items = append(items, NewItem([]byte(value.Raw), idPath))
			return true
		})
		return items, nil
	}

	return parseLines(trimmed, idPath)
}

func parseLines(data []byte, idPath string) ([]Item, error) {
	var items []Item
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		if !gjson.ValidBytes(text) {
			return nil, fmt.Errorf("source: line %d: %w", line, ErrInvalidJSON)
		}
		items = append(items, NewItem(text, idPath))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return items, nil
}

// Load reads and parses the file at path.
func Load(path, idPath string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	items, err := Parse(data, idPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Matcher returns the identity contract for items: same ID, same compacted
// raw JSON.
func Matcher() identity.Matcher[Item] {
	return identity.ByID(func(i Item) string { return i.ID }).
		WithContent(func(a, b Item) bool { return a.Raw == b.Raw })
}

// Compare returns a comparator ordering items by the value at path.
// Values order by JSON type first (null, false, number, string, true,
// objects and arrays), then by value; strings compare case-sensitively.
func Compare(path string) func(a, b Item) int {
	return func(a, b Item) int {
		va, vb := a.Get(path), b.Get(path)
		switch {
		case va.Less(vb, true):
			return -1
		case vb.Less(va, true):
			return 1
		default:
			return 0
		}
	}
}

// CompareCollated is like Compare, but two string values are ordered by the
// collation rules of the BCP 47 language tag lang, so that for example
// "alice" sorts before "Bob". The comparator must not be used from several
// goroutines at once.
func CompareCollated(path, lang string) (func(a, b Item) int, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("source: collation %q: %w", lang, err)
	}
	col := collate.New(tag)
	fallback := Compare(path)

	return func(a, b Item) int {
		va, vb := a.Get(path), b.Get(path)
		if va.Type == gjson.String && vb.Type == gjson.String {
			return col.CompareString(va.Str, vb.Str)
		}
		return fallback(a, b)
	}, nil
}

// Marshal renders items as an indented JSON array.
func Marshal(items []Item) []byte {
	raws := make([]string, len(items))
	for i, item := range items {
		raws[i] = item.Raw
	}
	return pretty.Pretty([]byte("[" + strings.Join(raws, ",") + "]"))
}
