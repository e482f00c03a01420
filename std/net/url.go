package net

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// Scheme is the protocol part of a URL. Only http and https are fetchable.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// DefaultPort returns 80 for http and 443 for https.
func (s Scheme) DefaultPort() uint16 {
	if s == SchemeHTTPS {
		return 443
	}
	return 80
}

// URL is an immutable absolute http(s) URL. Path always begins with "/"
// and may carry a query string; fragments are dropped at parse time.
type URL struct {
	Scheme Scheme
	Host   string
	Port   uint16
	Path   string
}

// Parse parses an absolute URL of the form scheme://host[:port][/path].
func Parse(text string) (URL, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(text), "://")
	if !ok {
		return URL{}, fmt.Errorf("%w: no scheme separator in %q", ErrInvalidURL, text)
	}
	u := URL{Scheme: Scheme(strings.ToLower(scheme))}
	if u.Scheme != SchemeHTTP && u.Scheme != SchemeHTTPS {
		return URL{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, scheme)
	}
	u.Port = u.Scheme.DefaultPort()

	hostport, path := rest, "/"
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		hostport, path = rest[:i], rest[i:]
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
	}
	if strings.Contains(hostport, "@") {
		return URL{}, fmt.Errorf("%w: userinfo in %q", ErrInvalidURL, text)
	}
	host, port, hasPort, err := splitHostPort(hostport)
	if err != nil {
		return URL{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if hasPort {
		p, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return URL{}, fmt.Errorf("%w: bad port %q", ErrInvalidURL, port)
		}
		u.Port = uint16(p)
	}
	if host == "" {
		return URL{}, fmt.Errorf("%w: empty host in %q", ErrInvalidURL, text)
	}
	u.Host = normalizeHost(host)
	u.Path = cleanPath(path)
	return u, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(text string) URL {
	u, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return u
}

// splitHostPort splits host[:port]. A bracketed IPv6 literal is returned
// with its brackets so it can be joined with a port again.
func splitHostPort(hostport string) (host, port string, hasPort bool, err error) {
	if !strings.HasPrefix(hostport, "[") {
		host, port, hasPort = strings.Cut(hostport, ":")
		return host, port, hasPort, nil
	}
	end := strings.IndexByte(hostport, ']')
	if end < 0 {
		return "", "", false, fmt.Errorf("missing ']' in host %q", hostport)
	}
	host, rest := hostport[:end+1], hostport[end+1:]
	if inner := host[1:end]; !strings.Contains(inner, ":") || net.ParseIP(inner) == nil {
		return "", "", false, fmt.Errorf("bad IPv6 literal %q", host)
	}
	switch {
	case rest == "":
		return host, "", false, nil
	case strings.HasPrefix(rest, ":"):
		return host, rest[1:], true, nil
	}
	return "", "", false, fmt.Errorf("unexpected %q after host %q", rest, host)
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	if strings.HasPrefix(host, "[") {
		return host
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		return ascii
	}
	return host
}

// Resolve resolves ref against u and returns a new URL; u is not modified.
func (u URL) Resolve(ref string) (URL, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.Contains(ref, "://"):
		return Parse(ref)
	case strings.HasPrefix(ref, "//"):
		return Parse(string(u.Scheme) + ":" + ref)
	case ref == "" || strings.HasPrefix(ref, "#"):
		return u, nil
	}

	path := ref
	if strings.HasPrefix(ref, "?") {
		base, _, _ := strings.Cut(u.Path, "?")
		path = base + ref
	} else if !strings.HasPrefix(ref, "/") {
		base, _, _ := strings.Cut(u.Path, "?")
		dir := base[:strings.LastIndex(base, "/")]
		for strings.HasPrefix(path, "../") || path == ".." {
			path = strings.TrimPrefix(strings.TrimPrefix(path, ".."), "/")
			if i := strings.LastIndex(dir, "/"); i >= 0 {
				dir = dir[:i]
			}
		}
		path = dir + "/" + path
	}
	return URL{Scheme: u.Scheme, Host: u.Host, Port: u.Port, Path: cleanPath(path)}, nil
}

// cleanPath removes "." and ".." segments (clamped at the root) and any
// fragment, keeping the query string untouched.
func cleanPath(p string) string {
	p, _, _ = strings.Cut(p, "#")
	query := ""
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p, query = p[:i], p[i:]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	segs := strings.Split(p, "/")
	out := make([]string, 0, len(segs))
	for i, s := range segs {
		last := i == len(segs)-1
		switch s {
		case ".":
			if last {
				out = append(out, "")
			}
		case "..":
			if len(out) > 1 {
				out = out[:len(out)-1]
			}
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, s)
		}
	}
	cleaned := strings.Join(out, "/")
	if cleaned == "" {
		cleaned = "/"
	}
	return cleaned + query
}

// Origin returns scheme://host:port, the key used for cookie scoping and
// same-origin decisions.
func (u URL) Origin() string {
	return fmt.Sprintf("%s://%s:%d", u.Scheme, u.Host, u.Port)
}

// HostPort returns the dialable host:port pair.
func (u URL) HostPort() string {
	return u.Host + ":" + strconv.Itoa(int(u.Port))
}

// SameOrigin reports whether u and other share scheme, host and port.
func (u URL) SameOrigin(other URL) bool {
	return u.Origin() == other.Origin()
}

// String renders the URL, omitting the port when it is the scheme default.
func (u URL) String() string {
	if u.Port == u.Scheme.DefaultPort() {
		return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path)
	}
	return fmt.Sprintf("%s://%s:%d%s", u.Scheme, u.Host, u.Port, u.Path)
}

// IsNetworkURL returns true if the string looks like an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
