// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and request/response helpers.

# Middleware

  - WithLogging: logs request start/completion with duration
  - CORS: allows cross-origin requests and handles preflight

# Helpers

  - JSONResponse / ErrorResponse: JSON encoding with the standard envelope
  - ParseJSONBody: size-capped JSON body decoding
  - GetClientIP: client address extraction behind proxies
*/
package middleware
