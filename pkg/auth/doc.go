// Package auth supplies the Coub access token.
//
// A token is looked up through a Chain of TokenSources, typically the
// configured value followed by an interactive prompt, and cached by a
// Session for the rest of the process. Nothing here persists the token.
package auth
