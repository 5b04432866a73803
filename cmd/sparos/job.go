// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sparos/internal/jobstore"
	"github.com/pdiddy/sparos/pkg/types"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Show or clear the persisted job record",
	Long: `Job prints the job recorded in the state directory, if any. A job is
recorded when a resolution starts and removed when it completes, so a
leftover record means the last run was interrupted.`,
	Args: cobra.NoArgs,
	RunE: runJob,
}

func init() {
	jobCmd.Flags().Bool("clear", false, "remove the persisted job record")
	addOutputFlag(jobCmd)
	rootCmd.AddCommand(jobCmd)
}

func runJob(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	clearJob, _ := cmd.Flags().GetBool("clear")
	cfg := configFrom(viper.GetViper())
	return showJob(cmd.Context(), cfg.Store, clearJob, format, cmd.OutOrStdout())
}

func showJob(ctx context.Context, cfg types.StoreConfig, clearJob bool, format string, w io.Writer) error {
	store, err := jobstore.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if clearJob {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(w, "Cleared persisted job.")
		return nil
	}

	job, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if job == nil {
		fmt.Fprintln(w, "No persisted job.")
		return nil
	}
	return renderJob(w, format, *job)
}
