// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles server configuration from CLI flags and
environment variables.

# Usage

	cfg, err := cliparse.ParseFlags(os.Args[1:])

CLI flags take precedence over environment variables.

# Settings

Required:

  - DATABASE_URL (-d): postgres connection string or sqlite path
  - HOST_KEY_SALT (--host-salt): secret for host key HMAC
  - JOIN_CODE_SALT (--join-salt): secret for join code generation

Optional:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): postgres or sqlite (default: postgres)
  - BASE_URL (--base-url): public base URL used in join links
*/
package cliparse
