package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewFlowCmd создаёт группу команд для управления flows.
func NewFlowCmd(depsFn func() *Deps, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Manage event flows",
	}

	cmd.AddCommand(
		newFlowStartCmd(depsFn, outputFn),
		newFlowShowCmd(depsFn, outputFn),
		newFlowRetryCmd(depsFn, outputFn),
		newFlowResetCmd(depsFn, outputFn),
	)

	return cmd
}

func newFlowStartCmd(depsFn func() *Deps, outputFn func() *Output) *cobra.Command {
	var flowType string
	var argsJSON string
	var initiatedBy string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new flow for a registered flow type",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFn()
			out := outputFn()

			rootArgs := map[string]any{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &rootArgs); err != nil {
					return fmt.Errorf("invalid --args JSON: %w", err)
				}
			}
			if initiatedBy == "" {
				initiatedBy = "cli"
			}

			flowID, err := deps.Orchestrator.StartFlow(cmd.Context(), flowType, rootArgs, initiatedBy)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Flow started: %s", flowID))
			return printFlow(cmd, deps, out, flowID)
		},
	}

	cmd.Flags().StringVar(&flowType, "type", "", "Flow type name, as registered in the DAG registry (required)")
	cmd.Flags().StringVar(&argsJSON, "args", "", "Root arguments as a JSON object")
	cmd.Flags().StringVar(&initiatedBy, "initiated-by", "", "Free-form initiator label (default: cli)")
	cmd.MarkFlagRequired("type")

	return cmd
}

func newFlowShowCmd(depsFn func() *Deps, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show FLOW_ID",
		Short: "Show a flow's current status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFn()
			out := outputFn()

			flowID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid flow id %q: %w", args[0], err)
			}
			return printFlow(cmd, deps, out, flowID)
		},
	}
}

func newFlowRetryCmd(depsFn func() *Deps, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "retry FLOW_ID",
		Short: "Re-enqueue every ERROR processor whose predecessors already completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFn()
			out := outputFn()

			flowID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid flow id %q: %w", args[0], err)
			}
			if err := deps.Orchestrator.Retry(cmd.Context(), flowID); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Flow retried: %s", flowID))
			return printFlow(cmd, deps, out, flowID)
		},
	}
}

func newFlowResetCmd(depsFn func() *Deps, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "reset FLOW_ID",
		Short: "Reset every processor to PENDING and restart the flow from its root processors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := depsFn()
			out := outputFn()

			flowID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid flow id %q: %w", args[0], err)
			}
			if err := deps.Orchestrator.ResetAndRestart(cmd.Context(), flowID); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Flow reset and restarted: %s", flowID))
			return printFlow(cmd, deps, out, flowID)
		},
	}
}

func printFlow(cmd *cobra.Command, deps *Deps, out *Output, flowID uuid.UUID) error {
	flow, err := deps.Flows.GetByID(cmd.Context(), flowID)
	if err != nil {
		return err
	}

	out.Print(
		[]string{"ID", "TYPE", "STATUS", "INITIATED_BY", "START_TIME"},
		[][]string{{flow.ID.String(), flow.Type, string(flow.Status), flow.InitiatedBy, flow.StartTime.Format("2006-01-02T15:04:05Z07:00")}},
		flow,
	)
	return nil
}
