package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/autocrew/team"
)

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run a one-shot agent team for the task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		crew, err := newCrew()
		if err != nil {
			return err
		}
		defer crew.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := crew.RunTeam(ctx, strings.Join(args, " "))
		if report != nil {
			printReport(report)
		}
		return err
	},
}

func printReport(report *team.Report) {
	fmt.Printf("\nrun %s: %s", report.RunID, report.Status)
	if report.Reason != "" {
		fmt.Printf(" (%s)", report.Reason)
	}
	fmt.Printf(", %d turns, %d messages\n", report.Turns, len(report.Messages))
	if report.Summary != "" {
		fmt.Println(report.Summary)
	}
	if len(report.Artifacts) > 0 {
		fmt.Println("artifacts:")
		for _, a := range report.Artifacts {
			fmt.Println("  -", a)
		}
	}
}
