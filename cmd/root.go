package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vbauerster/mpb/v4"

	"github.com/lantern-mc/lantern/config"
	"github.com/lantern-mc/lantern/core"
	"github.com/lantern-mc/lantern/internal/shared"
	"github.com/lantern-mc/lantern/lantern"
)

var rootCmd = &cobra.Command{
	Use:   "lantern",
	Short: "Search and install Minecraft content from multiple catalogs",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate(fmt.Sprintf("lantern %s\n", versionString()))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "The config file to use (defaults to lantern.toml in the user config dir)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.PersistentFlags().String("instance", "", "The instance directory to install into")
	_ = viper.BindPFlag("instance", rootCmd.PersistentFlags().Lookup("instance"))
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Accept all prompts and pick the best match (non-interactive mode)")
	_ = viper.BindPFlag("non-interactive", rootCmd.PersistentFlags().Lookup("yes"))
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// loadStore opens the user config, creating the store against the default
// path when no --config was given.
func loadStore() *config.Store {
	path := viper.GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			shared.Exitf("Failed to locate the config directory: %v\n", err)
		}
	}
	store, err := config.NewStore(path)
	if err != nil {
		shared.Exitln(err)
	}
	return store
}

// newClient builds the full pipeline from the stored config. Pass a progress
// container to render download bars.
func newClient(store *config.Store, progress *mpb.Progress) *lantern.Client {
	if viper.GetString("instance") == "" && store.InstanceDir() != "" {
		viper.Set("instance", store.InstanceDir())
	}
	return lantern.New(lantern.Options{
		CurseforgeAPIKey: store.CurseforgeKey(),
		LocalCatalogs:    store.LocalCatalogs(),
		Progress:         progress,
	})
}

// parseItemRef resolves a "source:id" argument against the registered
// providers. Source names may themselves contain colons (local catalogs), so
// the longest matching provider name wins.
func parseItemRef(ref string) (core.CatalogItem, bool) {
	var item core.CatalogItem
	for _, p := range lantern.AllProviders() {
		prefix := p.Name() + ":"
		if strings.HasPrefix(ref, prefix) && len(p.Name()) > len(item.Source) {
			item = core.CatalogItem{Source: p.Name(), ID: strings.TrimPrefix(ref, prefix)}
		}
	}
	if item.Source == "" || item.ID == "" {
		return core.CatalogItem{}, false
	}
	return item, true
}

func versionString() string {
	if config.Version == "" {
		return "dev"
	}
	return config.Version
}
