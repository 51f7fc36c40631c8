// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package config loads the msgctl configuration and builds the protection
machinery it describes.

Configuration is read with viper from a YAML file, by default
$XDG_CONFIG_HOME/msgctl/config.yaml, and every key can be overridden with an
environment variable prefixed MSGCTL_, with dots replaced by underscores:

	bindings:
	  hmac_secret: "0123456789abcdef0123456789abcdef"
	  max_age: 13m
	  max_clock_skew: 10m
	nonce:
	  backend: redis
	  redis:
	    addrs: ["localhost:6379"]
	    key_prefix: "msg:dev:"
	logging:
	  format: text
	  level: debug

	MSGCTL_NONCE_BACKEND=memory msgctl serve
*/
package config
