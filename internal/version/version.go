// Package version contains the dc311 version.
package version

// Version is the version of the dc311 client.
const Version = "0.1.0-dev"

// UserAgent is the default User-Agent header sent by the HTTP transport.
const UserAgent = "dc311-go/" + Version
