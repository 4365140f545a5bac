package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsched/internal/calendar"
	"github.com/teemow/meetsched/internal/config"
)

func newSlotsCmd() *cobra.Command {
	var (
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List free meeting slots",
		Long: `Compute and print the free meeting slots from the calendar file,
honoring the weekly availability template, holidays, blocked intervals,
and the minimum notice period.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			manager := calendar.NewManager(calendar.ManagerConfig{
				Path:        cfg.Calendar.Path,
				MinNotice:   cfg.Calendar.MinNotice,
				MaxResults:  cfg.Calendar.MaxResults,
				HorizonDays: cfg.Calendar.HorizonDays,
			})
			if err := manager.EnsureExists(); err != nil {
				return err
			}

			var fromDate, toDate calendar.Date
			if from != "" {
				if fromDate, err = calendar.ParseDate(from); err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
			}
			if to != "" {
				if toDate, err = calendar.ParseDate(to); err != nil {
					return fmt.Errorf("invalid --to date: %w", err)
				}
			}

			slots, err := manager.FreeSlots(fromDate, toDate)
			if err != nil {
				return err
			}

			if len(slots) == 0 {
				fmt.Println("No free slots in the requested range")
				return nil
			}
			for i, slot := range slots {
				fmt.Printf("%3d. %s\n", i, slot)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date of the search range (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&to, "to", "", "End date of the search range, inclusive (YYYY-MM-DD)")

	return cmd
}
