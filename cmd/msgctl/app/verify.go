// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/wire"
)

type verifyOptions struct {
	transport string
	url       string
	fromJSON  string
}

func newVerifyCmd(v *viper.Viper) *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify [key=value...]",
		Short: "Verify a received message",
		Long: `Treat the given fields as a received message: select its type, decode and
validate it and check its protections with the configured binding stack.

Fields are taken from key=value arguments, a JSON object (--from-json) or the
query of a redirect URL (--url, which implies --transport indirect).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, v, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.transport, "transport", messaging.Direct.String(), "Arrival transport (direct or indirect)")
	cmd.Flags().StringVar(&opts.url, "url", "", "Redirect URL carrying the message in its query")
	cmd.Flags().StringVar(&opts.fromJSON, "from-json", "", "Read fields from a JSON object file (- for stdin)")
	return cmd
}

func runVerify(cmd *cobra.Command, v *viper.Viper, opts *verifyOptions, args []string) error {
	ctx := cmd.Context()

	fields, err := readFields(cmd, args, opts.fromJSON)
	if err != nil {
		return err
	}
	transport, err := messaging.ParseTransport(opts.transport)
	if err != nil {
		return err
	}
	if opts.url != "" {
		u, err := url.Parse(opts.url)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		fromQuery, err := wire.FromValues(u.Query())
		if err != nil {
			return err
		}
		for k, v := range fromQuery {
			fields[k] = v
		}
		transport = messaging.Indirect
	}

	rt, err := loadRuntime(ctx, v)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	msg, err := rt.channel.Receive(ctx, fields, transport)
	if err != nil {
		return err
	}
	decoded, err := messaging.Fields(msg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "# %s (%s, protections %s)\n",
		messaging.NameOf(msg), msg.Transport(), msg.RequiredProtection()); err != nil {
		return err
	}
	return printFields(out, decoded)
}
