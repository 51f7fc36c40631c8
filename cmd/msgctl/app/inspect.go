// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-messaging/dispatch"
	"github.com/stacklok/toolhive-messaging/messages"
	"github.com/stacklok/toolhive-messaging/messaging"
)

// Output formats for inspect.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// messageTypeView is the printed description of a registered message type.
type messageTypeView struct {
	Name        string   `json:"name" yaml:"name"`
	Transport   string   `json:"transport" yaml:"transport"`
	Version     string   `json:"version" yaml:"version"`
	Protections string   `json:"protections" yaml:"protections"`
	Rule        string   `json:"rule" yaml:"rule"`
	Fields      []string `json:"fields" yaml:"fields"`
}

func newInspectCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect [type...]",
		Short: "List the registered message types",
		Long: `List the registered message types with their transport, protocol version,
required protections, dispatch rule and declared fields.

Types are listed in dispatch order. Pass type names to show only those types.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := messages.NewRegistry()
			if err != nil {
				return err
			}
			views, err := describe(reg, args)
			if err != nil {
				return err
			}
			return printViews(cmd.OutOrStdout(), views, format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", FormatTable, "Output format (table, json or yaml)")
	return cmd
}

func describe(reg *dispatch.Registry, names []string) ([]messageTypeView, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := reg.New(n); !ok {
			return nil, fmt.Errorf("unknown message type %q", n)
		}
		want[n] = true
	}

	var views []messageTypeView
	for _, info := range reg.Entries() {
		if len(want) > 0 && !want[info.Name] {
			continue
		}
		msg, _ := reg.New(info.Name)
		views = append(views, messageTypeView{
			Name:        info.Name,
			Transport:   info.Transport.String(),
			Version:     info.Version.String(),
			Protections: info.Protections.String(),
			Rule:        info.Rule,
			Fields:      messaging.DeclaredFields(msg),
		})
	}
	return views, nil
}

func printViews(w io.Writer, views []messageTypeView, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTable:
		return printTable(w, views)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printTable(w io.Writer, views []messageTypeView) error {
	headers := []string{"Type", "Transport", "Version", "Protections", "Rule"}
	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithHeader(headers),
		tablewriter.WithRendition(
			tw.Rendition{
				Borders: tw.Border{
					Left:   tw.State(1),
					Top:    tw.State(1),
					Right:  tw.State(1),
					Bottom: tw.State(1),
				},
			},
		),
		tablewriter.WithAlignment(tw.MakeAlign(len(headers), tw.AlignLeft)),
	)

	for _, v := range views {
		if err := table.Append([]string{
			v.Name,
			v.Transport,
			v.Version,
			strings.ReplaceAll(v.Protections, "|", ", "),
			v.Rule,
		}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
