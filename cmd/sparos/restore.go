// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/sparos/pkg/types"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replay the persisted job from an interrupted run",
	Long: `Restore reads the job recorded by an interrupted resolve or watch run and
submits its query again with a fresh token. Nothing from the interrupted
run is reused. If no job is recorded, restore does nothing.`,
	Args: cobra.NoArgs,
	RunE: runRestore,
}

func init() {
	addOutputFlag(restoreCmd)
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return restoreJob(cmd.Context(), cfg, logger, format, cmd.OutOrStdout())
}

func restoreJob(ctx context.Context, cfg types.Config, log logrus.FieldLogger, format string, w io.Writer) error {
	a, err := newApp(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	job, restored, err := a.orch.RestoreJob(ctx)
	if err != nil {
		return err
	}
	if !restored {
		fmt.Fprintln(w, "No persisted job.")
		return nil
	}
	return a.report(ctx, job.Query, format, w)
}
