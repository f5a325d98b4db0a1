package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/repo"
	"github.com/shaiso/eventflow/internal/scheduler"
)

// NewScheduleCmd создаёт группу команд для управления flow_schedules.
func NewScheduleCmd(depsFn func() *Deps, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage flow schedules",
	}

	cmd.AddCommand(
		newScheduleListCmd(depsFn, outputFn),
		newScheduleCreateCmd(depsFn, outputFn),
	)

	return cmd
}

func newScheduleListCmd(depsFn func() *Deps, outputFn func() *Output) *cobra.Command {
	var flowType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flow schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFn()
			out := outputFn()

			schedules, err := deps.Schedules.List(cmd.Context(), repo.ScheduleFilter{
				FlowType: flowType,
				Limit:    100,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "FLOW_TYPE", "NAME", "SCHEDULE", "ENABLED", "NEXT_DUE_AT"}
			rows := make([][]string, len(schedules))
			for i, s := range schedules {
				rows[i] = []string{
					s.ID.String(), s.FlowType, s.Name, scheduleExpr(&s),
					fmt.Sprintf("%t", s.Enabled), formatTimePtr(s.NextDueAt),
				}
			}
			out.Print(headers, rows, schedules)
			return nil
		},
	}

	cmd.Flags().StringVar(&flowType, "flow-type", "", "Filter by flow type")
	return cmd
}

func newScheduleCreateCmd(depsFn func() *Deps, outputFn func() *Output) *cobra.Command {
	var flowType, name, cronExpr, timezone, argsJSON string
	var intervalSec int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a flow schedule (cron or interval)",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFn()
			out := outputFn()

			if cronExpr == "" && intervalSec <= 0 {
				return fmt.Errorf("one of --cron or --interval is required")
			}
			if cronExpr != "" {
				if err := scheduler.ValidateCronExpr(cronExpr); err != nil {
					return err
				}
			}

			rootArgs := map[string]any{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &rootArgs); err != nil {
					return fmt.Errorf("invalid --args JSON: %w", err)
				}
			}
			if timezone == "" {
				timezone = "UTC"
			}

			now := time.Now()
			sched := &domain.FlowSchedule{
				ID:            uuid.New(),
				FlowType:      flowType,
				Name:          name,
				CronExpr:      cronExpr,
				IntervalSec:   intervalSec,
				Timezone:      timezone,
				Enabled:       true,
				RootArguments: rootArgs,
				CreatedAt:     now,
				UpdatedAt:     now,
			}

			nextDue, err := scheduler.CalculateInitialNextDue(sched)
			if err != nil {
				return err
			}
			sched.NextDueAt = &nextDue

			if err := deps.Schedules.Create(cmd.Context(), sched); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule created: %s", sched.ID))
			out.Print(
				[]string{"ID", "FLOW_TYPE", "NAME", "SCHEDULE", "ENABLED", "NEXT_DUE_AT"},
				[][]string{{sched.ID.String(), sched.FlowType, sched.Name, scheduleExpr(sched), "true", formatTimePtr(sched.NextDueAt)}},
				sched,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&flowType, "flow-type", "", "Flow type name, as registered in the DAG registry (required)")
	cmd.Flags().StringVar(&name, "name", "", "Schedule name")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (minute hour dom month dow)")
	cmd.Flags().IntVar(&intervalSec, "interval", 0, "Interval in seconds (ignored if --cron is set)")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "Timezone for cron evaluation")
	cmd.Flags().StringVar(&argsJSON, "args", "", "Root arguments passed to every run, as a JSON object")
	cmd.MarkFlagRequired("flow-type")

	return cmd
}

func scheduleExpr(s *domain.FlowSchedule) string {
	if s.IsCron() {
		return s.CronExpr
	}
	return fmt.Sprintf("every %ds", s.IntervalSec)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02T15:04:05Z07:00")
}
