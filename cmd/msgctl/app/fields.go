// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacklok/toolhive-messaging/wire"
)

// parseAssignments turns key=value arguments into fields.
func parseAssignments(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q: expected key=value", arg)
		}
		if _, dup := fields[k]; dup {
			return nil, fmt.Errorf("field %q given more than once", k)
		}
		fields[k] = v
	}
	return fields, nil
}

// readFields collects fields from key=value arguments and, when jsonPath is
// set, from a JSON object read from that file ("-" reads stdin).
func readFields(cmd *cobra.Command, args []string, jsonPath string) (map[string]string, error) {
	fields, err := parseAssignments(args)
	if err != nil {
		return nil, err
	}
	if jsonPath == "" {
		return fields, nil
	}

	var data []byte
	if jsonPath == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(jsonPath) // #nosec G304 - path is given by the operator
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", err)
	}
	fromJSON, err := wire.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	for k, v := range fromJSON {
		if _, dup := fields[k]; dup {
			return nil, fmt.Errorf("field %q given more than once", k)
		}
		fields[k] = v
	}
	return fields, nil
}

// printFields writes fields as sorted key=value lines.
func printFields(w io.Writer, fields map[string]string) error {
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, fields[k]); err != nil {
			return err
		}
	}
	return nil
}
