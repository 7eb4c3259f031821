package cmdshared

import (
	"errors"
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/viper"
	"gopkg.in/dixonwille/wmenu.v4"

	"github.com/lantern-mc/lantern/core"
)

// itemResultsList lets fuzzy rank catalog items by name.
type itemResultsList []core.CatalogItem

func (r itemResultsList) String(i int) string {
	return r[i].Name
}

func (r itemResultsList) Len() int {
	return len(r)
}

// SelectItem narrows a result list to one item. With a single result it is
// returned directly; in non-interactive mode the best fuzzy match against
// the search term wins; otherwise the user picks from a menu, fuzzy-ordered.
// The boolean is false when the user cancelled.
func SelectItem(searchTerm string, results []core.CatalogItem) (core.CatalogItem, bool) {
	if len(results) == 0 {
		return core.CatalogItem{}, false
	}
	if len(results) == 1 {
		return results[0], true
	}

	fuzzySearchResults := fuzzy.FindFrom(searchTerm, itemResultsList(results))

	if viper.GetBool("non-interactive") {
		if len(fuzzySearchResults) > 0 {
			return results[fuzzySearchResults[0].Index], true
		}
		return results[0], true
	}

	menu := wmenu.NewMenu("Choose a number:")

	menu.Option("Cancel", nil, false, nil)
	if len(fuzzySearchResults) == 0 {
		for i, v := range results {
			menu.Option(menuLabel(v), v, i == 0, nil)
		}
	} else {
		for i, v := range fuzzySearchResults {
			menu.Option(menuLabel(results[v.Index]), results[v.Index], i == 0, nil)
		}
	}

	var selected core.CatalogItem
	var cancelled bool
	menu.Action(func(menuRes []wmenu.Opt) error {
		if len(menuRes) != 1 || menuRes[0].Value == nil {
			fmt.Println("Cancelled!")
			cancelled = true
			return nil
		}

		var ok bool
		selected, ok = menuRes[0].Value.(core.CatalogItem)
		if !ok {
			return errors.New("error converting interface from wmenu")
		}
		return nil
	})
	if err := menu.Run(); err != nil {
		fmt.Println(err)
		return core.CatalogItem{}, false
	}
	if cancelled {
		return core.CatalogItem{}, false
	}
	return selected, true
}

func menuLabel(item core.CatalogItem) string {
	label := item.Name + " [" + item.Source + ", " + item.DownloadsDisplay() + " downloads]"
	if item.Summary != "" {
		label += " (" + item.Summary + ")"
	}
	return label
}
