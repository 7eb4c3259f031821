package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lantern-mc/lantern/internal/shared"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Change stored configuration",
	Args:  cobra.NoArgs,
}

var settingsCfKeyCmd = &cobra.Command{
	Use:   "cf-key <key>",
	Short: "Store a CurseForge API key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := loadStore()
		if err := store.SetCurseforgeKey(args[0]); err != nil {
			shared.Exitln(err)
		}
		fmt.Println("CurseForge key saved.")
	},
}

var settingsAccountCmd = &cobra.Command{
	Use:   "account <name>",
	Short: "Set the offline account name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := loadStore()
		if err := store.SetAccount(args[0]); err != nil {
			shared.Exitln(err)
		}
		fmt.Println("Account saved.")
	},
}

var settingsInstanceCmd = &cobra.Command{
	Use:   "instance <dir>",
	Short: "Set the default instance directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := loadStore()
		if err := store.SetInstanceDir(args[0]); err != nil {
			shared.Exitln(err)
		}
		fmt.Println("Instance directory saved.")
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsCfKeyCmd)
	settingsCmd.AddCommand(settingsAccountCmd)
	settingsCmd.AddCommand(settingsInstanceCmd)
}
