package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsched/internal/calendar"
	"github.com/teemow/meetsched/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default calendar file",
		Long: `Create the calendar file with the default availability template:
Monday to Friday, 09:00-12:00 and 13:00-17:00, 30-minute slots,
Europe/Berlin timezone, German public holidays excluded.

Edit the file afterwards to match your actual availability.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			store := calendar.NewStore(cfg.Calendar.Path)
			if store.Exists() && !force {
				return fmt.Errorf("calendar file %s already exists (use --force to overwrite)", store.Path())
			}

			if err := store.Save(calendar.DefaultDocument()); err != nil {
				return err
			}

			fmt.Printf("Wrote default calendar to %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing calendar file")

	return cmd
}
