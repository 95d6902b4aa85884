package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gdpr-backend/internal/exports"
)

func newPruneCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete generated exports older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := v.GetString(keyExportRoot)
			retention := v.GetDuration(keyRetention)
			if retention <= 0 {
				return fmt.Errorf("retention must be positive, got %s", retention)
			}

			res, err := exports.NewJanitor(root, retention).Prune(cmd.Context())
			if err != nil {
				return fmt.Errorf("prune %s: %w", root, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d files (%s) and %d directories from %s\n",
				res.Files, humanize.Bytes(uint64(res.Bytes)), res.Dirs, root)
			return nil
		},
	}
}
