// Package model contains the interfaces and data shared by the packages
// implementing the dc311 client.
//
// # Criteria for adding a type to this package
//
// Only interfaces that separate unrelated pieces of code (so that we can
// mock them in unit tests) and the small amount of data those interfaces
// exchange. No logic, unless it is strictly tied to such data.
//
// # Content of this package
//
// - http.go: the HTTPClient abstraction over *http.Client;
//
// - keyvaluestore.go: the key-value store used for response caching;
//
// - logger.go: an apex/log compatible logger;
//
// - transport.go: the Transport used to perform a single API round trip.
package model
