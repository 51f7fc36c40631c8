// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package logging builds the [log/slog.Logger] used by the messaging packages.

Loggers default to JSON on [os.Stderr] at INFO with RFC3339 timestamps:

	logger := logging.New()
	logger.Info("message received", "message_type", "token_request")

The format and level can be taken from LOG_FORMAT and LOG_LEVEL:

	opts, err := logging.FromEnv(&env.OSReader{})
	if err != nil {
		return err
	}
	logger := logging.New(opts...)

Library components that are not given a logger use [Discard].
*/
package logging
