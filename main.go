package main

import (
	"github.com/lantern-mc/lantern/cmd"
	"github.com/lantern-mc/lantern/config"
)

// Set via -ldflags at release time.
var Version string
var CfApiKey string

func main() {
	config.SetVersion(Version)
	config.SetCurseforgeApiKey(CfApiKey)
	cmd.Execute()
}
