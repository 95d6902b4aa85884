package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gdpr-backend/internal/settings"
)

func newSettingsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or import the export settings",
	}
	cmd.AddCommand(newSettingsShowCmd(v))
	cmd.AddCommand(newSettingsImportCmd(v))
	return cmd
}

func newSettingsShowCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeFn, err := openStore(ctx, v)
			if err != nil {
				return err
			}
			defer closeFn()

			exportCfg, err := store.GetExportConfig(ctx)
			if err != nil {
				return fmt.Errorf("load export config: %w", err)
			}
			link, err := store.GetLinkSettings(ctx)
			if err != nil {
				return fmt.Errorf("load link settings: %w", err)
			}
			return settings.EncodeDocument(cmd.OutOrStdout(), settings.Document{Export: exportCfg, Link: link})
		},
	}
}

func newSettingsImportCmd(v *viper.Viper) *cobra.Command {
	var validateOnly bool
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Replace the stored settings with the contents of a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := settings.DecodeDocument(f)
			if err != nil {
				return err
			}
			if validateOnly {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d linked entity types, %d user fields\n",
					args[0], len(doc.Export.LinkedEntities), len(doc.Export.UserFields))
				return nil
			}

			ctx := cmd.Context()
			store, closeFn, err := openStore(ctx, v)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := store.SaveExportConfig(ctx, doc.Export); err != nil {
				return fmt.Errorf("save export config: %w", err)
			}
			if err := store.SaveLinkSettings(ctx, doc.Link); err != nil {
				return fmt.Errorf("save link settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&validateOnly, "dry-run", false, "parse the file without saving it")
	return cmd
}
