// Package fingerprint derives keyed request fingerprints used as fallback
// session identifiers for clients that do not carry a session cookie.
//
// The fingerprint is an HMAC over the client IP and User-Agent. It groups
// requests from one network egress point and browser together; it is not
// bound to a user identity and must not be used for authentication.
package fingerprint
