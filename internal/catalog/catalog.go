// Package catalog loads the item catalog: shop categories and the
// seed prices the store is reconciled from.
package catalog

import (
	"log/slog"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Item is one tradable good with its seed prices and bounds.
type Item struct {
	ID       string
	Category string
	Buy      float64
	Sell     float64
	MinPrice float64
	MaxPrice float64
}

// Category carries display metadata for one shop category.
type Category struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`
	ItemCount   int    `json:"item_count"`
}

// SkippedItem reports a malformed catalog entry that was left out.
type SkippedItem struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// Catalog is the validated result of loading a catalog file.
type Catalog struct {
	Categories []Category
	Items      []Item
	Skipped    []SkippedItem
}

// Required price fields are pointers so a missing key can be told apart
// from an explicit zero.
type seedItem struct {
	Buy      *float64 `toml:"buy"`
	Sell     *float64 `toml:"sell"`
	MinPrice *float64 `toml:"min_price"`
	MaxPrice *float64 `toml:"max_price"`
}

type seedCategory struct {
	DisplayName string              `toml:"display_name"`
	Icon        string              `toml:"icon"`
	Items       map[string]seedItem `toml:"items"`
}

type catalogFile struct {
	Categories map[string]seedCategory `toml:"categories"`
}

// Load reads and validates a TOML catalog file. A malformed item is
// skipped and reported in Catalog.Skipped; it never aborts the rest of
// the catalog. Only an unreadable or undecodable file is an error.
func Load(path string) (*Catalog, error) {
	var cf catalogFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return nil, errors.Wrapf(err, "failed to decode catalog file with path: %s", path)
	}

	cat := &Catalog{}

	catIDs := make([]string, 0, len(cf.Categories))
	for id := range cf.Categories {
		catIDs = append(catIDs, id)
	}
	sort.Strings(catIDs)

	for _, catID := range catIDs {
		sc := cf.Categories[catID]

		name := sc.DisplayName
		if name == "" {
			name = catID
		}

		itemIDs := make([]string, 0, len(sc.Items))
		for id := range sc.Items {
			itemIDs = append(itemIDs, id)
		}
		sort.Strings(itemIDs)

		count := 0
		for _, itemID := range itemIDs {
			item, err := validate(itemID, catID, sc.Items[itemID])
			if err != nil {
				slog.Warn("skipping malformed catalog item", "item", itemID, "category", catID, "reason", err)
				cat.Skipped = append(cat.Skipped, SkippedItem{ItemID: itemID, Reason: err.Error()})
				continue
			}
			cat.Items = append(cat.Items, item)
			count++
		}

		cat.Categories = append(cat.Categories, Category{
			ID:          catID,
			DisplayName: name,
			Icon:        sc.Icon,
			ItemCount:   count,
		})
	}

	return cat, nil
}

func validate(itemID, catID string, s seedItem) (Item, error) {
	switch {
	case s.Buy == nil:
		return Item{}, errors.New("missing required field: buy")
	case s.Sell == nil:
		return Item{}, errors.New("missing required field: sell")
	case s.MinPrice == nil:
		return Item{}, errors.New("missing required field: min_price")
	case s.MaxPrice == nil:
		return Item{}, errors.New("missing required field: max_price")
	}

	if *s.Buy < 0 || *s.Sell < 0 {
		return Item{}, errors.New("prices must be non-negative")
	}
	if *s.MinPrice > *s.MaxPrice {
		return Item{}, errors.Errorf("min_price %v exceeds max_price %v", *s.MinPrice, *s.MaxPrice)
	}

	return Item{
		ID:       itemID,
		Category: catID,
		Buy:      *s.Buy,
		Sell:     *s.Sell,
		MinPrice: *s.MinPrice,
		MaxPrice: *s.MaxPrice,
	}, nil
}
