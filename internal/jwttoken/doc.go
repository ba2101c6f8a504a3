// Package jwttoken signs and verifies the HS256 access tokens issued by the
// token and mock strategies.
package jwttoken
