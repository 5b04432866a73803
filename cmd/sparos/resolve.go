// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/sparos/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <Name#1234>",
	Short: "Resolve a Bungie handle into one validated account",
	Long: `Resolve searches Bungie.net for the handle, picks the candidate that has
Destiny account data (preferring the cross-save identity), and prints the
account with every platform membership found for the name.

The job is recorded in the state directory while it runs so it can be
replayed with "sparos restore" if the process is interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	addOutputFlag(resolveCmd)
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Handles may contain spaces, so unquoted words are rejoined.
	query := strings.TrimSpace(strings.Join(args, " "))
	return resolveQuery(cmd.Context(), cfg, logger, query, format, cmd.OutOrStdout())
}

// resolveQuery runs one query through the orchestrator and prints the
// outcome.
func resolveQuery(ctx context.Context, cfg types.Config, log logrus.FieldLogger, query, format string, w io.Writer) error {
	a, err := newApp(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	a.orch.Submit(query)
	return a.report(ctx, query, format, w)
}

// report waits for the current job and prints its result.
func (a *app) report(ctx context.Context, query, format string, w io.Writer) error {
	st, err := a.settle(ctx)
	if err != nil {
		return err
	}
	if st.Error != "" {
		return reportFailure(w, format, a.resolver.errFor(query), st.Error)
	}
	if st.Account == nil {
		// Only reachable when the job was cancelled.
		return reportFailure(w, format, nil, "resolution did not complete")
	}

	res := types.ResolvedAccount{Account: *st.Account}
	if st.Memberships != nil {
		res.Memberships = *st.Memberships
	}
	return renderResolution(w, format, res)
}
