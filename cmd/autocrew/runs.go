package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived team runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		crew, err := newCrew()
		if err != nil {
			return err
		}
		defer crew.Close()

		archive := crew.Archive()
		if archive == nil {
			fmt.Println("run archive unavailable")
			return nil
		}

		runs, err := archive.ListRuns(context.Background(), runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs yet")
			return nil
		}

		for _, r := range runs {
			fmt.Printf("%s  %-7s  %-10s  %2d turns  %s  %s\n",
				r.ID, r.Status, r.Reason, r.Turns,
				r.StartedAt.Local().Format("2006-01-02 15:04"), r.Task)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
}
