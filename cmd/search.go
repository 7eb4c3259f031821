package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lantern-mc/lantern/core"
	"github.com/lantern-mc/lantern/internal/shared"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search all configured sources at once",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := loadStore()
		filters := buildFilters(cmd, args, store)

		client := newClient(store, nil)
		page, err := client.Search(context.Background(), filters)
		if err != nil {
			shared.Exitln(err)
		}

		if err := store.SaveFilters(filters); err != nil {
			fmt.Printf("Warning: failed to save search filters: %v\n", err)
		}

		if len(page.Items) == 0 {
			fmt.Println("No results.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REF\tNAME\tAUTHOR\tDOWNLOADS\tLOADERS")
		for _, item := range page.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				item.Key(), item.Name, item.Author,
				item.DownloadsDisplay(), strings.Join(item.Loaders, ","))
		}
		w.Flush()

		fmt.Printf("\nPage %d, %d total results", page.Page, page.Total)
		if page.HasMore {
			fmt.Printf(" (more available, use --page %d)", page.Page+1)
		}
		fmt.Println()
	},
}

// buildFilters starts from the last-used filters and overlays whatever the
// user set this time. A new query resets the page.
func buildFilters(cmd *cobra.Command, args []string, store interface {
	LoadFilters() (core.CatalogFilters, bool, error)
}) core.CatalogFilters {
	filters, ok, err := store.LoadFilters()
	if err != nil || !ok {
		filters = core.NewCatalogFilters("", core.CategoryMod)
	}

	if len(args) > 0 && args[0] != filters.Query {
		filters.Query = args[0]
		filters.Page = 0
	}
	if cmd.Flags().Changed("category") {
		filters.Category = core.Category(viper.GetString("search.category"))
		filters.Page = 0
	}
	if cmd.Flags().Changed("game-version") {
		filters.GameVersion = viper.GetString("search.game-version")
	}
	if cmd.Flags().Changed("loader") {
		filters.Loader = viper.GetString("search.loader")
	}
	if cmd.Flags().Changed("source") {
		filters.Platform = viper.GetString("search.source")
	}
	if cmd.Flags().Changed("sort") {
		filters.Sort = core.SortMode(viper.GetString("search.sort"))
	}
	if cmd.Flags().Changed("ascending") {
		filters.Ascending = viper.GetBool("search.ascending")
	}
	if cmd.Flags().Changed("page") {
		filters.Page = viper.GetInt("search.page")
	}
	if cmd.Flags().Changed("page-size") {
		filters.PageSize = viper.GetInt("search.page-size")
	}

	if err := filters.Validate(); err != nil {
		shared.Exitln(err)
	}
	return filters
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("category", "c", "mod", "Content category (modpack, mod, shader, resourcepack, datapack, world, addon)")
	_ = viper.BindPFlag("search.category", searchCmd.Flags().Lookup("category"))
	searchCmd.Flags().String("game-version", "", "Restrict results to a Minecraft version")
	_ = viper.BindPFlag("search.game-version", searchCmd.Flags().Lookup("game-version"))
	searchCmd.Flags().StringP("loader", "l", "", "Restrict results to a mod loader (forge, fabric, quilt, neoforge)")
	_ = viper.BindPFlag("search.loader", searchCmd.Flags().Lookup("loader"))
	searchCmd.Flags().StringP("source", "s", core.PlatformAll, "Search a single source instead of all of them")
	_ = viper.BindPFlag("search.source", searchCmd.Flags().Lookup("source"))
	searchCmd.Flags().String("sort", string(core.SortPopular), "Sort order (popular, updated, relevance)")
	_ = viper.BindPFlag("search.sort", searchCmd.Flags().Lookup("sort"))
	searchCmd.Flags().Bool("ascending", false, "Reverse the sort direction")
	_ = viper.BindPFlag("search.ascending", searchCmd.Flags().Lookup("ascending"))
	searchCmd.Flags().IntP("page", "p", 0, "Result page, starting at 0")
	_ = viper.BindPFlag("search.page", searchCmd.Flags().Lookup("page"))
	searchCmd.Flags().Int("page-size", core.DefaultPageSize, "Results per page (1-24)")
	_ = viper.BindPFlag("search.page-size", searchCmd.Flags().Lookup("page-size"))
}
