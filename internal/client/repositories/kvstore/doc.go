// Package kvstore is the persisted key/value store of a client profile.
//
// It plays the role browser local storage plays for a web client: a small,
// durable map shared by every client process of the same profile. Values are
// raw bytes; Get returns (nil, nil) for missing keys. Writers do not
// coordinate, last write wins.
package kvstore
