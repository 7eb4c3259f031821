package core

import "io"

// Account is the active launcher user. The access token is only consulted to
// decide offline-vs-online install context; authentication itself happens
// elsewhere.
type Account struct {
	Username    string
	UUID        string
	AccessToken string
}

func (a Account) Online() bool {
	return a.AccessToken != ""
}

// AccountProvider yields the active user.
type AccountProvider interface {
	ActiveAccount() (Account, error)
}

// Placer writes a downloaded artifact into an instance's content directory.
// The installer only supplies the stream and target name; directory layout
// and collision handling belong to the instance manager.
type Placer interface {
	Place(instanceDir, fileName string, r io.Reader) error
}

// ConfigStore persists user configuration between sessions. Save replaces
// the stored object wholesale; there is no partial patching.
type ConfigStore interface {
	LoadFilters() (CatalogFilters, bool, error)
	SaveFilters(CatalogFilters) error
}
