// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/wire"
)

// Output formats for sign.
const (
	FormatFields = "fields"
	FormatURL    = "url"
)

var errFormPostRequired = errors.New("message does not fit in a redirect URL, deliver it as a form post")

type signOptions struct {
	to       string
	fromJSON string
	output   string
}

func newSignCmd(v *viper.Viper) *cobra.Command {
	opts := &signOptions{}
	cmd := &cobra.Command{
		Use:   "sign <type> [key=value...]",
		Short: "Prepare a protected message",
		Long: `Prepare an outgoing message of the given type: apply the protections the type
requires with the configured binding stack, validate it and print its fields.

With --output url the message is encoded for indirect delivery to the --to
recipient and the redirect URL is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, v, opts, args[0], args[1:])
		},
	}
	cmd.Flags().StringVar(&opts.to, "to", "", "Recipient URL of the message")
	cmd.Flags().StringVar(&opts.fromJSON, "from-json", "", "Read fields from a JSON object file (- for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", FormatFields, "Output format (fields, json or url)")
	return cmd
}

func runSign(cmd *cobra.Command, v *viper.Viper, opts *signOptions, name string, args []string) error {
	ctx := cmd.Context()

	fields, err := readFields(cmd, args, opts.fromJSON)
	if err != nil {
		return err
	}

	rt, err := loadRuntime(ctx, v)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	msg, ok := rt.channel.Registry().New(name)
	if !ok {
		return fmt.Errorf("unknown message type %q", name)
	}
	if err := messaging.Assign(fields, msg); err != nil {
		return err
	}
	if opts.to != "" {
		directed, ok := msg.(interface {
			messaging.DirectedMessage
			SetRecipient(*url.URL)
		})
		if !ok {
			return fmt.Errorf("%s messages have no recipient", name)
		}
		u, err := url.Parse(opts.to)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("invalid recipient %q", opts.to)
		}
		directed.SetRecipient(u)
	}

	out := cmd.OutOrStdout()
	switch opts.output {
	case FormatURL:
		if msg.Transport() != messaging.Indirect {
			return fmt.Errorf("%s is a %s message and has no redirect URL", name, msg.Transport())
		}
		im, err := rt.channel.EncodeIndirect(ctx, msg)
		if err != nil {
			return err
		}
		if im.FormPost {
			return errFormPostRequired
		}
		_, err = fmt.Fprintln(out, im.Location.String())
		return err
	case FormatJSON:
		prepared, err := rt.channel.Prepare(ctx, msg)
		if err != nil {
			return err
		}
		data, err := wire.EncodeJSON(prepared, messaging.NumericFields(msg))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case FormatFields:
		prepared, err := rt.channel.Prepare(ctx, msg)
		if err != nil {
			return err
		}
		return printFields(out, prepared)
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}
}
