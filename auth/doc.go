// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key and identifier generation for events and
participants.

# Host Keys

Hosts authenticate with a deterministic HMAC key derived from the event ID
and a server-side salt:

	hostKey := auth.GenerateHostKey(eventID, cfg.HostKeySalt)
	err := auth.ValidateHostKey(eventID, presentedKey, cfg.HostKeySalt)

Being deterministic, keys need no storage and cannot leak from the database.

# Join Codes

Published events get a short public join code, also HMAC-derived and then
base62-encoded for clean URLs:

	code := auth.GenerateJoinCode(eventID, cfg.JoinCodeSalt)

# Anonymous Identity Keys

Participants joining without an account or phone number receive a random
192-bit identity key via GenerateAnonymousKey.

# IP Hashing

HashIP produces a salted one-way hash for vote audit metadata, so raw
addresses are never stored.
*/
package auth
