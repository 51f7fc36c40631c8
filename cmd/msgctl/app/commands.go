// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the msgctl command-line application.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-messaging/channel"
	"github.com/stacklok/toolhive-messaging/config"
	"github.com/stacklok/toolhive-messaging/env"
	"github.com/stacklok/toolhive-messaging/logger"
	"github.com/stacklok/toolhive-messaging/logging"
	"github.com/stacklok/toolhive-messaging/messages"
)

// NewRootCmd creates the msgctl root command. Every call returns an
// independent command tree with its own configuration state.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:               "msgctl",
		DisableAutoGenTag: true,
		Short:             "Inspect, sign and serve protected OAuth messages",
		Long: `msgctl works with the OAuth 2.0 message types of this module.

It lists the registered message types and their protection requirements,
prepares signed messages for testing clients, verifies received messages and
runs a small authorization server that exchanges protected messages.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize(&env.OSReader{}, logger.DebugFlag(v.GetBool("debug")))
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the msgctl configuration file")
	mustBind(v, "debug", rootCmd.PersistentFlags().Lookup("debug"))
	mustBind(v, "config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().String("hmac-secret", "", "Shared secret for HMAC signatures (overrides bindings.hmac_secret)")
	mustBind(v, "bindings.hmac_secret", rootCmd.PersistentFlags().Lookup("hmac-secret"))

	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newSignCmd(v))
	rootCmd.AddCommand(newVerifyCmd(v))
	rootCmd.AddCommand(newServeCmd(v))

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind %s flag: %v", key, err))
	}
}

// runtime is everything a command needs to exchange messages.
type runtime struct {
	cfg         *config.Config
	logger      *slog.Logger
	enforcement *config.Enforcement
	channel     *channel.Channel
}

func (r *runtime) Close() error {
	return r.enforcement.Close()
}

// loadRuntime loads the configuration selected by v and builds the binding
// stack and channel from it. extra options are applied to the channel last.
func loadRuntime(ctx context.Context, v *viper.Viper, extra ...channel.Option) (*runtime, error) {
	cfg, err := config.Load(v, v.GetString("config"))
	if err != nil {
		return nil, err
	}
	logOpts, err := cfg.LoggingOptions()
	if err != nil {
		return nil, err
	}
	// LOG_FORMAT and LOG_LEVEL override the configuration file
	envOpts, err := logging.FromEnv(&env.OSReader{})
	if err != nil {
		return nil, err
	}
	logOpts = append(logOpts, envOpts...)

	enf, err := cfg.BuildBindings(ctx)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debugf("Binding stack provides %s", enf.Stack.Protections())

	reg, err := messages.NewRegistry()
	if err != nil {
		_ = enf.Close()
		return nil, err
	}
	log := logging.New(logOpts...)
	opts := append(cfg.ChannelOptions(),
		channel.WithBindings(enf.Stack),
		channel.WithLogger(log),
	)
	ch, err := channel.New(reg, append(opts, extra...)...)
	if err != nil {
		_ = enf.Close()
		return nil, err
	}
	return &runtime{cfg: cfg, logger: log, enforcement: enf, channel: ch}, nil
}
