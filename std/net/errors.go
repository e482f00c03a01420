package net

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned for malformed URLs or unsupported schemes.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrTLS marks handshake and certificate failures.
	ErrTLS = errors.New("tls error")
	// ErrNetwork marks connection, write and read failures.
	ErrNetwork = errors.New("network error")
	// ErrUnsupportedEncoding is returned when a response uses
	// Transfer-Encoding or Content-Encoding.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	// ErrHTTPOnly is returned when a script tries to write an HttpOnly cookie.
	ErrHTTPOnly = errors.New("httponly cookie rejected")
	// ErrMalformedCookie is returned for Set-Cookie values without name=value.
	ErrMalformedCookie = errors.New("malformed cookie")
)

// TLSError is a handshake or certificate verification failure. Callers show
// a security warning for it instead of a generic network error.
type TLSError struct {
	Host string
	Err  error
}

func (e *TLSError) Error() string {
	return fmt.Sprintf("tls handshake with %s: %v", e.Host, e.Err)
}

func (e *TLSError) Unwrap() []error { return []error{ErrTLS, e.Err} }

// NetworkError is a transport failure during dial, write or read.
type NetworkError struct {
	Op   string
	Addr string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }
