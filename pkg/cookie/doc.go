// Package cookie sets and reads HTTP cookies for the console, with optional
// AES-GCM encryption and one-shot flash values.
//
// A Manager is created from one or more secrets (at least 32 characters
// each). The first secret encrypts; every secret is tried when decrypting,
// which allows key rotation by prepending a new secret.
//
//	cm, err := cookie.NewFromConfig(cfg)
//	_ = cm.SetEncrypted(w, "sid", token)
//	token, err := cm.GetEncrypted(r, "sid")
//
// Flash values are JSON-encoded, encrypted and deleted on first read. The
// login page uses them to explain why the user was sent back.
package cookie
