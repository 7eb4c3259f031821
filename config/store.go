package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/lantern-mc/lantern/core"
)

// Store is the viper-backed user configuration: CurseForge key, instance
// directory, offline account and the last-used search filters. Saves replace
// the whole file; there is no partial patching.
type Store struct {
	v    *viper.Viper
	path string
}

// DefaultPath places lantern.toml next to the user's other tool configs.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lantern", "lantern.toml"), nil
}

// NewStore reads the config file at path. A missing file is not an error;
// the store starts empty and creates the file on first save.
func NewStore(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return &Store{v: v, path: path}, nil
}

// LoadFilters returns the persisted search filters. The second return is
// false when nothing was saved yet.
func (s *Store) LoadFilters() (core.CatalogFilters, bool, error) {
	raw := s.v.Get("filters")
	if raw == nil {
		return core.CatalogFilters{}, false, nil
	}
	var filters core.CatalogFilters
	if err := mapstructure.Decode(raw, &filters); err != nil {
		return core.CatalogFilters{}, false, fmt.Errorf("decode saved filters: %w", err)
	}
	return filters, true, nil
}

func (s *Store) SaveFilters(filters core.CatalogFilters) error {
	var m map[string]interface{}
	if err := mapstructure.Decode(filters, &m); err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	s.v.Set("filters", m)
	return s.write()
}

// CurseforgeKey returns the user-configured key, falling back to the
// baked-in build key.
func (s *Store) CurseforgeKey() string {
	if key := s.v.GetString("curseforge-key"); key != "" {
		return key
	}
	key, err := DecodeCfApiKey()
	if err != nil {
		return ""
	}
	return key
}

func (s *Store) SetCurseforgeKey(key string) error {
	s.v.Set("curseforge-key", key)
	return s.write()
}

func (s *Store) InstanceDir() string {
	return s.v.GetString("instance-dir")
}

func (s *Store) SetInstanceDir(dir string) error {
	s.v.Set("instance-dir", dir)
	return s.write()
}

func (s *Store) LocalCatalogs() []string {
	return s.v.GetStringSlice("local-catalogs")
}

// ActiveAccount satisfies core.AccountProvider with the offline account from
// the config file. An empty token means offline installs.
func (s *Store) ActiveAccount() (core.Account, error) {
	name := s.v.GetString("account.name")
	if name == "" {
		return core.Account{}, errors.New("no account configured")
	}
	return core.Account{
		Username:    name,
		UUID:        s.v.GetString("account.uuid"),
		AccessToken: s.v.GetString("account.token"),
	}, nil
}

func (s *Store) SetAccount(name string) error {
	s.v.Set("account.name", name)
	return s.write()
}

func (s *Store) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), os.ModePerm); err != nil {
		return err
	}
	return s.v.WriteConfigAs(s.path)
}
