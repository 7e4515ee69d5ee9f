package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"gwi.com/tutorgen/internal/core"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic...>",
	Short: "Generate and store a tutorial, then print it as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		generated, err := a.service.GenerateTutorial(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), generated)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored tutorials, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		return printJSON(cmd.OutOrStdout(), a.service.GetTutorials(cmd.Context()))
	},
}

var showCmd = &cobra.Command{
	Use:   "show <tutorial-id>",
	Short: "Print a tutorial with its steps and follow-up conversations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		detail, err := a.service.GetTutorial(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if detail == nil {
			return fmt.Errorf("tutorial %s not found", args[0])
		}
		return printJSON(cmd.OutOrStdout(), detail)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <step-id> <question...>",
	Short: "Ask a follow-up question about a stored step",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		step, err := a.service.GetStep(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if step == nil {
			return fmt.Errorf("step %s not found", args[0])
		}

		message, err := a.service.AskFollowUp(cmd.Context(), step.ID, core.BuildStepContext(step), strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), message)
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
