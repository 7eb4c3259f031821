package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vbauerster/mpb/v4"

	"github.com/lantern-mc/lantern/core"
	"github.com/lantern-mc/lantern/install"
	"github.com/lantern-mc/lantern/internal/cmdshared"
	"github.com/lantern-mc/lantern/internal/shared"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:     "install <query|source:id>",
	Short:   "Install an item and its required dependencies into an instance",
	Aliases: []string{"add", "get"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := loadStore()
		progress := mpb.New()
		client := newClient(store, progress)

		instanceDir, err := shared.GetInstanceDir()
		if err != nil {
			shared.Exitln(err)
		}

		item, ok := parseItemRef(args[0])
		if !ok {
			item, ok = searchForInstall(client, args[0])
			if !ok {
				shared.Exitln("Nothing selected.")
			}
		}

		if !cmdshared.PromptYesNo(fmt.Sprintf("Install %s from %s into %s? [Y/n]: ", displayName(item), item.Source, instanceDir)) {
			shared.Exitln("Cancelled.")
		}

		if account, err := store.ActiveAccount(); err == nil && !account.Online() {
			fmt.Printf("Installing offline as %s\n", account.Username)
		}

		req := install.Request{
			Item:          item,
			VersionID:     viper.GetString("install.version"),
			GameVersion:   viper.GetString("install.game-version"),
			Loader:        viper.GetString("install.loader"),
			LoaderVersion: shared.GetRawLoaderVersion(viper.GetString("install.loader-version")),
			InstanceDir:   instanceDir,
		}

		delta, err := client.Install(context.Background(), req)
		progress.Wait()
		if err != nil {
			// Files placed before a failure stay in the instance.
			for _, mod := range delta.Mods {
				fmt.Printf("Installed %s (%s)\n", mod.Name, mod.FileName)
			}
			shared.Exitln(err)
		}

		for _, mod := range delta.Mods {
			fmt.Printf("Installed %s (%s)\n", mod.Name, mod.FileName)
		}
		if delta.Loader != "" {
			line := "Detected loader: " + delta.Loader
			if delta.LoaderVersion != "" {
				line += " " + delta.LoaderVersion
			}
			fmt.Println(line)
		}
	},
}

func searchForInstall(client interface {
	Search(ctx context.Context, filters core.CatalogFilters) (core.CatalogPage, error)
}, query string) (core.CatalogItem, bool) {
	filters := core.NewCatalogFilters(query, core.Category(viper.GetString("install.category")))
	filters.GameVersion = viper.GetString("install.game-version")
	filters.Loader = viper.GetString("install.loader")
	if err := filters.Validate(); err != nil {
		shared.Exitln(err)
	}

	page, err := client.Search(context.Background(), filters)
	if err != nil {
		shared.Exitln(err)
	}
	if len(page.Items) == 0 {
		shared.Exitln("No results found!")
	}
	return cmdshared.SelectItem(query, page.Items)
}

func displayName(item core.CatalogItem) string {
	if item.Name != "" {
		return item.Name
	}
	return item.ID
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().StringP("category", "c", "mod", "Content category to search when the argument is a query")
	_ = viper.BindPFlag("install.category", installCmd.Flags().Lookup("category"))
	installCmd.Flags().String("version", "", "Install a specific version id instead of the best match")
	_ = viper.BindPFlag("install.version", installCmd.Flags().Lookup("version"))
	installCmd.Flags().String("game-version", "", "The instance's Minecraft version")
	_ = viper.BindPFlag("install.game-version", installCmd.Flags().Lookup("game-version"))
	installCmd.Flags().StringP("loader", "l", "", "The instance's mod loader")
	_ = viper.BindPFlag("install.loader", installCmd.Flags().Lookup("loader"))
	installCmd.Flags().String("loader-version", "", "The loader build to record (accepts mcVersion-loaderVersion)")
	_ = viper.BindPFlag("install.loader-version", installCmd.Flags().Lookup("loader-version"))
}
