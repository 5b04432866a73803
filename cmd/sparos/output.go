// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sparos/internal/resolve"
	"github.com/pdiddy/sparos/pkg/types"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", formatTable, "output format (table, json, yaml)")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case formatTable, formatJSON, formatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("invalid output format %q: use table, json, or yaml", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeStructured(w io.Writer, format string, v any) error {
	if format == formatYAML {
		return writeYAML(w, v)
	}
	return writeJSON(w, v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}

// renderResolution prints a resolved account and its membership set.
func renderResolution(w io.Writer, format string, res types.ResolvedAccount) error {
	if format != formatTable {
		return writeStructured(w, format, res)
	}

	acct := res.Account
	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Handle", acct.Handle()})
	t.AppendRow(table.Row{"Platform", types.MembershipTypeName(acct.MembershipType)})
	t.AppendRow(table.Row{"Membership ID", acct.MembershipID})
	t.AppendRow(table.Row{"Display Name", acct.DisplayName})
	t.AppendRow(table.Row{"Source", acct.Kind.String()})
	if acct.BungieNetMembershipID != "" {
		t.AppendRow(table.Row{"Bungie.net ID", acct.BungieNetMembershipID})
	}
	t.Render()
	fmt.Fprintln(w)

	if res.Memberships.Len() == 0 {
		fmt.Fprintln(w, "No memberships.")
		return nil
	}
	m := newTable(w)
	m.AppendHeader(table.Row{"Platform", "Membership ID", "Display Name", "Cross Save"})
	for _, ms := range res.Memberships.Memberships {
		cross := ""
		if ms.CrossSaveOverride != 0 {
			cross = types.MembershipTypeName(ms.CrossSaveOverride)
		}
		m.AppendRow(table.Row{types.MembershipTypeName(ms.MembershipType), ms.MembershipID, ms.DisplayName, cross})
	}
	m.Render()
	return nil
}

// renderJob prints a persisted job record.
func renderJob(w io.Writer, format string, job types.SearchJob) error {
	if format != formatTable {
		return writeStructured(w, format, job)
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Query", "Token", "Started"})
	t.AppendRow(table.Row{job.ID, job.Query, strconv.FormatUint(job.Token, 10), job.StartedAt.Format(time.RFC3339)})
	t.Render()
	return nil
}

// renderState prints one published state as a compact line, or as one
// document per state in the structured formats.
func renderState(w io.Writer, format string, st types.PipelineState) error {
	switch format {
	case formatJSON:
		return json.NewEncoder(w).Encode(st)
	case formatYAML:
		fmt.Fprintln(w, "---")
		return writeYAML(w, st)
	}

	switch {
	case st.Running && st.Job != nil:
		_, err := fmt.Fprintf(w, "running  %s (token %d)\n", st.Job.Query, st.Job.Token)
		return err
	case st.Error != "":
		_, err := fmt.Fprintf(w, "failed   %s\n", st.Error)
		return err
	case st.Account != nil:
		n := 0
		if st.Memberships != nil {
			n = st.Memberships.Len()
		}
		_, err := fmt.Fprintf(w, "resolved %s  %s %s  (%d memberships)\n",
			st.Account.Handle(), types.MembershipTypeName(st.Account.MembershipType), st.Account.MembershipID, n)
		return err
	default:
		_, err := fmt.Fprintln(w, "idle")
		return err
	}
}

// serviceError converts a resolution failure into the structured error
// printed in JSON mode. msg is used when no typed error was recorded.
func serviceError(err error, msg string) *goerrors.Error {
	var re *resolve.Error
	if errors.As(err, &re) {
		return re.ToServiceError()
	}
	if err == nil {
		err = errors.New(msg)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).
		WithCode(http.StatusInternalServerError).
		WithTextCode("INTERNAL")
}

// reportFailure prints a failed resolution in the chosen format and
// returns the error the command should exit with.
func reportFailure(w io.Writer, format string, err error, msg string) error {
	switch format {
	case formatJSON:
		se := serviceError(err, msg)
		if werr := writeJSON(w, se.ToErrorResponse(false, nil)); werr != nil {
			return werr
		}
		return errReported
	case formatYAML:
		se := serviceError(err, msg)
		if werr := writeYAML(w, map[string]any{"error": map[string]any{
			"category":  se.Category.String(),
			"code":      se.Code,
			"text_code": se.TextCode,
			"message":   se.Message,
		}}); werr != nil {
			return werr
		}
		return errReported
	}
	return errors.New(msg)
}
