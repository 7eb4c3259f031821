package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lantern-mc/lantern/internal/shared"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <source:id>",
	Short: "Show the full listing of one item",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := loadStore()
		client := newClient(store, nil)

		item, ok := parseItemRef(args[0])
		if !ok {
			shared.Exitf("Invalid reference %q, expected source:id\n", args[0])
		}

		details, err := client.Details(context.Background(), item)
		if err != nil {
			shared.Exitln(err)
		}

		fmt.Println(details.Name)
		if details.Author != "" {
			fmt.Println("by " + details.Author)
		}
		fmt.Printf("%s downloads on %s\n", details.DownloadsDisplay(), details.Source)
		if len(details.GameVersions) > 0 {
			fmt.Println("Minecraft: " + strings.Join(details.GameVersions, ", "))
		}
		if len(details.Loaders) > 0 {
			fmt.Println("Loaders: " + strings.Join(details.Loaders, ", "))
		}
		if details.Body != "" {
			fmt.Println()
			fmt.Println(details.Body)
		} else if details.Summary != "" {
			fmt.Println()
			fmt.Println(details.Summary)
		}
		if len(details.Gallery) > 0 {
			fmt.Println("\nGallery:")
			for _, url := range details.Gallery {
				fmt.Println("  " + url)
			}
		}
		if len(details.Versions) > 0 {
			fmt.Println("\nVersions:")
			for _, v := range details.Versions {
				line := fmt.Sprintf("  %s (%s)", v.Name, v.Channel)
				if len(v.GameVersions) > 0 {
					line += " for " + strings.Join(v.GameVersions, ", ")
				}
				fmt.Println(line)
			}
		}

		if viper.GetBool("info.open") {
			if details.PageURL == "" {
				shared.Exitln("This source has no page to open.")
			}
			if err := open.Start(details.PageURL); err != nil {
				shared.Exitf("Failed to open %s: %v\n", details.PageURL, err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolP("open", "o", false, "Open the item's page in a browser")
	_ = viper.BindPFlag("info.open", infoCmd.Flags().Lookup("open"))
}
