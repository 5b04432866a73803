// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/sparos/internal/logging"
	"github.com/pdiddy/sparos/pkg/types"
)

const cancelCommand = "cancel"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Resolve handles read from stdin, newest query wins",
	Long: `Watch reads one handle per line from stdin and submits each as it arrives.
A new line supersedes any resolution still in flight: the older result is
discarded when it returns. A line reading "cancel" drops the current job
without starting another. Every published state is printed.

Watch exits at end of input once the last job has settled.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addOutputFlag(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return watch(cmd.Context(), cfg, logger, format, cmd.InOrStdin(), cmd.OutOrStdout())
}

func watch(ctx context.Context, cfg types.Config, log logrus.FieldLogger, format string, r io.Reader, w io.Writer) error {
	log = logging.OrDiscard(log)

	publish := func(st types.PipelineState) {
		if err := renderState(w, format, st); err != nil {
			log.WithError(err).Warn("could not print state")
		}
	}
	a, err := newApp(ctx, cfg, log, publish)
	if err != nil {
		return err
	}
	defer a.Close()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, cancelCommand):
			a.orch.Cancel()
		default:
			a.orch.Submit(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}

	_, err = a.settle(ctx)
	return err
}
