package app

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bvisness/blockflow/app/core"
	"github.com/bvisness/blockflow/util"
)

// Toolbox is the palette of block types the user can spawn, grouped into
// categories. It is loaded from a JSON file so palettes can be swapped
// without recompiling.
type Toolbox struct {
	Categories []ToolboxCategory
}

type ToolboxCategory struct {
	Name       string
	BlockTypes []string
}

var titleCaser = cases.Title(language.English)

// BlockDisplayName turns a block type like "controls_if" into "Controls If"
// for palette labels.
func BlockDisplayName(typ string) string {
	return titleCaser.String(strings.ReplaceAll(typ, "_", " "))
}

// LoadToolbox reads a palette description. Expected shape:
//
//	{"categories": [{"name": "Logic", "blocks": ["controls_if", ...]}, ...]}
//
// Block types that aren't registered are rejected so a stale palette fails
// loudly instead of producing dead palette entries.
func LoadToolbox(path string) (*Toolbox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read toolbox file %s: %w", path, err)
	}
	return ParseToolbox(data)
}

func ParseToolbox(data []byte) (*Toolbox, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("toolbox is not valid JSON")
	}

	var tb Toolbox
	var parseErr error
	gjson.GetBytes(data, "categories").ForEach(func(_, cat gjson.Result) bool {
		name := cat.Get("name").String()
		if name == "" {
			parseErr = fmt.Errorf("toolbox category with no name")
			return false
		}
		c := ToolboxCategory{Name: name}
		for _, b := range cat.Get("blocks").Array() {
			typ := b.String()
			if _, ok := core.GetBlockDefinition(typ); !ok {
				parseErr = fmt.Errorf("toolbox category %q lists unknown block type %q", name, typ)
				return false
			}
			c.BlockTypes = append(c.BlockTypes, typ)
		}
		tb.Categories = append(tb.Categories, c)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(tb.Categories) == 0 {
		return nil, fmt.Errorf("toolbox has no categories")
	}
	return &tb, nil
}

// AllBlockTypes returns every type in the palette, in category order.
func (tb *Toolbox) AllBlockTypes() []string {
	var res []string
	for _, c := range tb.Categories {
		res = append(res, c.BlockTypes...)
	}
	return res
}

// Search fuzzy-matches the query against palette entries (both the raw type
// and the display name), best matches first, capped at max results.
func (tb *Toolbox) Search(query string, max int) []string {
	if query == "" {
		return nil
	}

	types := tb.AllBlockTypes()
	targets := make([]string, 0, len(types)*2)
	byTarget := make(map[string]string, len(types)*2)
	for _, typ := range types {
		display := BlockDisplayName(typ)
		targets = append(targets, typ, display)
		byTarget[typ] = typ
		byTarget[display] = typ
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Sort(ranks)

	var res []string
	seen := make(map[string]bool)
	for _, r := range ranks {
		typ := byTarget[r.Target]
		if seen[typ] {
			continue
		}
		seen[typ] = true
		res = append(res, typ)
	}
	if max > 0 {
		res = res[:util.Min(len(res), max)]
	}
	return res
}
