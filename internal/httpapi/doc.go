// Package httpapi exposes the catalogue over HTTP with echo.
//
// POST /login exchanges username and password for a signed JWT carrying the user's role.
// Everything below /api requires that token. Reads are open to every role, mutations and
// the user listing require the ADMIN role.
package httpapi
