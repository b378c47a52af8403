package main

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/artstock/console/jobs"
)

func redisOpt(cfg cliConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger and inspect background jobs",
	}
	cmd.AddCommand(newJobsTriggerCmd(), newJobsStatsCmd())
	return cmd
}

func newJobsTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <task>",
		Short: "Enqueue a task now, e.g. " + jobs.TaskBadgeRefresh,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := jobs.TaskByName(args[0], "cli")
			if err != nil {
				return err
			}
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			client := asynq.NewClient(redisOpt(cfg))
			defer client.Close()
			info, err := client.EnqueueContext(cmd.Context(), task)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return nil
		},
	}
}

func newJobsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the default queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			inspector := asynq.NewInspector(redisOpt(cfg))
			defer inspector.Close()
			info, err := inspector.GetQueueInfo(jobs.QueueDefault)
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(),
				table.Row{"Queue", "Pending", "Active", "Scheduled", "Retry", "Archived"},
				[]table.Row{{info.Queue, info.Pending, info.Active, info.Scheduled, info.Retry, info.Archived}})
			return nil
		},
	}
}
