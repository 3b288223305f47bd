/*
Package vault keeps a list of credential records in a single encrypted file.

# Files

A vault is two files. The salt file holds 16 random bytes, written once by the
first save and never regenerated while the vault file exists. The vault file
holds

	nonce (12 bytes) || ciphertext || tag (16 bytes)

sealed with AES-256-GCM (or ChaCha20-Poly1305) under a key derived from the
master password and the salt with Argon2id. The plaintext is the JSON document
produced by Encode.

# Errors

Every failure is an *Error carrying a Kind. A wrong master password and a
damaged vault file are reported identically as KindAuthenticationFailed;
malformed contents behind a valid tag are KindMalformedVault.

# Concurrency

A vault is meant to be used by one process at a time. Nothing here locks the
files.
*/
package vault
