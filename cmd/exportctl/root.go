package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gdpr-backend/internal/settings"
	"gdpr-backend/internal/shared/storage/db"
)

const envPrefix = "EXPORTCTL"

// Config keys, also reachable as EXPORTCTL_<KEY>.
const (
	keyDatabaseURL  = "database_url"
	keyExportRoot   = "export_root"
	keyRetention    = "retention"
	keySettingsFile = "settings_file"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(keyExportRoot, "./data/gdpr/csv_exports")
	v.SetDefault(keyRetention, 24*time.Hour)

	root := &cobra.Command{
		Use:           "exportctl",
		Short:         "Manage GDPR export settings and generated archives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("database-url", "", "postgres connection string for the settings store")
	flags.String("export-root", "", "directory holding generated exports (default ./data/gdpr/csv_exports)")
	flags.Duration("retention", 0, "age after which generated files are pruned (default 24h)")
	flags.String("settings-file", "", "YAML settings file used instead of the database")

	_ = v.BindPFlag(keyDatabaseURL, flags.Lookup("database-url"))
	_ = v.BindPFlag(keyExportRoot, flags.Lookup("export-root"))
	_ = v.BindPFlag(keyRetention, flags.Lookup("retention"))
	_ = v.BindPFlag(keySettingsFile, flags.Lookup("settings-file"))

	root.AddCommand(newSettingsCmd(v))
	root.AddCommand(newPruneCmd(v))
	return root
}

// openStore picks the settings file when one is configured, otherwise the
// database. The returned closer is never nil.
func openStore(ctx context.Context, v *viper.Viper) (settings.Store, func(), error) {
	if path := v.GetString(keySettingsFile); path != "" {
		store, err := settings.NewFileStore(path, true)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}

	dsn := v.GetString(keyDatabaseURL)
	if dsn == "" {
		return nil, nil, fmt.Errorf("either --settings-file or --database-url is required")
	}
	conn, err := db.Connect(ctx, dsn, db.OptionsFor(db.ProfileCLI))
	if err != nil {
		return nil, nil, err
	}
	return &settings.PGStore{DB: conn}, func() { _ = conn.Close() }, nil
}
