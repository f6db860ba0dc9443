package config

import (
	"fmt"
	"strings"

	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/Veraticus/estimate-flow/internal/importer"
	"github.com/spf13/viper"
)

// Config keys.
const (
	KeyDatabasePath   = "database.path"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
	KeyDateFormat     = "import.date_format"
	KeyCSVProfiles    = "csv_profiles"
	DefaultDatabase   = "~/.config/flow/flow.db"
	DefaultDateFormat = importer.DefaultDateLayout
)

// csvProfile is the config file shape of an importer.Profile.
type csvProfile struct {
	Name       string   `mapstructure:"name"`
	DateFormat string   `mapstructure:"date_format"`
	Columns    []string `mapstructure:"columns"`
	Header     bool     `mapstructure:"header"`
}

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabase)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyDateFormat, DefaultDateFormat)
}

// LoadCSVProfiles reads every profile under csv_profiles.
//
//	csv_profiles:
//	  - name: credit-union
//	    date_format: "2006-01-02"
//	    header: true
//	    columns: [date, none, payee, value, account]
func LoadCSVProfiles(v *viper.Viper) ([]importer.Profile, error) {
	var raw []csvProfile
	if err := v.UnmarshalKey(KeyCSVProfiles, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, KeyCSVProfiles, err)
	}

	profiles := make([]importer.Profile, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, p := range raw {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: csv profile %d has no name", common.ErrInvalidConfig, i)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate csv profile %q", common.ErrInvalidConfig, name)
		}
		seen[name] = true

		if len(p.Columns) == 0 {
			return nil, fmt.Errorf("%w: csv profile %q has no columns", common.ErrInvalidConfig, name)
		}
		columns := make([]importer.Column, len(p.Columns))
		for j, c := range p.Columns {
			column, err := importer.ParseColumn(c)
			if err != nil {
				return nil, fmt.Errorf("%w: csv profile %q: %w", common.ErrInvalidConfig, name, err)
			}
			columns[j] = column
		}

		profiles = append(profiles, importer.Profile{
			Name:       name,
			DateLayout: p.DateFormat,
			Columns:    columns,
			HasHeader:  p.Header,
		})
	}

	return profiles, nil
}

// FindCSVProfile returns the named profile.
func FindCSVProfile(v *viper.Viper, name string) (*importer.Profile, error) {
	profiles, err := LoadCSVProfiles(v)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: csv profile %q", common.ErrMissingConfig, name)
}
