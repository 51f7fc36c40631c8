// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package recovery provides panic recovery middleware for HTTP handlers.
//
// A panicking handler is answered with 500 and an OAuth error body
// ({"error":"server_error"}) instead of crashing the server:
//
//	r := chi.NewRouter()
//	r.Use(recovery.New(logger))
package recovery
