package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// PriceSet lists the provider price ids sold under one (plan, cycle) pair.
type PriceSet struct {
	Base        string `mapstructure:"base"`
	AICredits   string `mapstructure:"ai_credits"`
	UserSeats   string `mapstructure:"user_seats"`
	Projects    string `mapstructure:"projects"`
	ActiveFlows string `mapstructure:"active_flows"`
}

// CatalogFile is the on-disk shape of the price catalog: plan -> cycle -> prices.
type CatalogFile struct {
	Plans map[string]map[string]PriceSet `mapstructure:"plans"`
}

// LoadCatalog reads the price catalog from a YAML/JSON/TOML file.
// Keys are case-insensitive; plan and cycle names are normalised to lower case.
func LoadCatalog(path string) (CatalogFile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return CatalogFile{}, fmt.Errorf("failed to read price catalog %s: %w", path, err)
	}
	var file CatalogFile
	if err := v.Unmarshal(&file); err != nil {
		return CatalogFile{}, fmt.Errorf("failed to decode price catalog %s: %w", path, err)
	}
	if len(file.Plans) == 0 {
		return CatalogFile{}, fmt.Errorf("price catalog %s defines no plans", path)
	}
	return file, nil
}
