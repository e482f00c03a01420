package net

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Cookie is one jar entry. Attribute names are lower-cased; "expires" holds
// a unix timestamp in seconds once normalized.
type Cookie struct {
	Value      string
	Attributes map[string]string
}

// HTTPOnly reports whether the cookie carries the HttpOnly attribute.
func (c Cookie) HTTPOnly() bool {
	_, ok := c.Attributes["httponly"]
	return ok
}

// SameSite returns the lower-cased SameSite attribute, or "".
func (c Cookie) SameSite() string {
	return strings.ToLower(c.Attributes["samesite"])
}

// Expires returns the expiry time when the cookie has a readable one.
func (c Cookie) Expires() (time.Time, bool) {
	raw, ok := c.Attributes["expires"]
	if !ok || raw == "" {
		return time.Time{}, false
	}
	if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(ts, 0), true
	}
	if t, ok := parseCookieTime(raw); ok {
		return t, true
	}
	return time.Time{}, false
}

func (c Cookie) expired(now time.Time) bool {
	exp, ok := c.Expires()
	return ok && now.After(exp)
}

var cookieTimeLayouts = []string{
	"Mon, 02-Jan-2006 15:04:05 MST",
	"Mon, 02 Jan 06 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

func parseCookieTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := http.ParseTime(s); err == nil {
		return t, true
	}
	for _, layout := range cookieTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseCookie parses "name=value; attr=value; flag" into a name and Cookie.
// Expires is normalized to a unix timestamp; Max-Age, when present and
// numeric, overrides it relative to now.
func ParseCookie(s string, now time.Time) (string, Cookie, error) {
	parts := strings.Split(s, ";")
	name, value, ok := strings.Cut(strings.TrimSpace(parts[0]), "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", Cookie{}, fmt.Errorf("%w: %q", ErrMalformedCookie, s)
	}
	c := Cookie{Value: strings.TrimSpace(value), Attributes: make(map[string]string)}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		c.Attributes[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	if raw, ok := c.Attributes["expires"]; ok {
		if t, ok := parseCookieTime(raw); ok {
			c.Attributes["expires"] = strconv.FormatInt(t.Unix(), 10)
		}
	}
	if raw, ok := c.Attributes["max-age"]; ok {
		if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
			exp := now.Add(time.Duration(secs) * time.Second)
			if secs <= 0 {
				exp = now.Add(-time.Second)
			}
			c.Attributes["expires"] = strconv.FormatInt(exp.Unix(), 10)
		}
	}
	return name, c, nil
}

// CookieJar maps origin -> cookie name -> Cookie. It is created empty and
// never persisted. Each method is atomic; there is no cross-request
// locking, so the last write made during a request wins.
type CookieJar struct {
	mu      sync.Mutex
	origins map[string]map[string]Cookie
}

// NewCookieJar returns an empty jar.
func NewCookieJar() *CookieJar {
	return &CookieJar{origins: make(map[string]map[string]Cookie)}
}

// Set stores or overwrites a cookie for origin.
func (j *CookieJar) Set(origin, name string, c Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	jar, ok := j.origins[origin]
	if !ok {
		jar = make(map[string]Cookie)
		j.origins[origin] = jar
	}
	jar[name] = c
}

// Get returns a live cookie, purging it if it has expired.
func (j *CookieJar) Get(origin, name string, now time.Time) (Cookie, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	c, ok := j.origins[origin][name]
	if !ok {
		return Cookie{}, false
	}
	if c.expired(now) {
		delete(j.origins[origin], name)
		return Cookie{}, false
	}
	return c, true
}

// Names returns the sorted names of all stored cookies for origin,
// including expired ones not yet purged.
func (j *CookieJar) Names(origin string) []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return sortedNames(j.origins[origin])
}

func sortedNames(m map[string]Cookie) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetCookieHeader parses one Set-Cookie value and stores it under origin.
func (j *CookieJar) SetCookieHeader(origin, header string, now time.Time) error {
	name, c, err := ParseCookie(header, now)
	if err != nil {
		return err
	}
	j.Set(origin, name, c)
	return nil
}

// CookieHeader builds the Cookie request header value for a request to
// origin. Expired entries are purged. SameSite=Lax cookies are withheld
// from cross-site POSTs and SameSite=Strict ones from any cross-site request.
func (j *CookieJar) CookieHeader(origin, method string, crossSite bool, now time.Time) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	jar := j.origins[origin]
	pairs := make([]string, 0, len(jar))
	for _, name := range sortedNames(jar) {
		c := jar[name]
		if c.expired(now) {
			delete(jar, name)
			continue
		}
		switch c.SameSite() {
		case "lax":
			if crossSite && method == "POST" {
				continue
			}
		case "strict":
			if crossSite {
				continue
			}
		}
		pairs = append(pairs, name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// ScriptCookie renders the document.cookie view of origin: HttpOnly cookies
// are hidden and expired cookies purged.
func (j *CookieJar) ScriptCookie(origin string, now time.Time) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	jar := j.origins[origin]
	var out []string
	for _, name := range sortedNames(jar) {
		c := jar[name]
		if c.HTTPOnly() {
			continue
		}
		if c.expired(now) {
			delete(jar, name)
			continue
		}
		parts := []string{name + "=" + c.Value}
		keys := make([]string, 0, len(c.Attributes))
		for k := range c.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v := c.Attributes[k]; v == "" {
				parts = append(parts, k)
			} else {
				parts = append(parts, k+"="+v)
			}
		}
		out = append(out, strings.Join(parts, "; "))
	}
	return strings.Join(out, "; ")
}

// SetScriptCookie stores a document.cookie write. HttpOnly writes are
// rejected with ErrHTTPOnly.
func (j *CookieJar) SetScriptCookie(origin, s string, now time.Time) error {
	name, c, err := ParseCookie(s, now)
	if err != nil {
		return err
	}
	if c.HTTPOnly() {
		return fmt.Errorf("%w: %s", ErrHTTPOnly, name)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	jar, ok := j.origins[origin]
	if !ok {
		jar = make(map[string]Cookie)
		j.origins[origin] = jar
	}
	// a live HttpOnly cookie cannot be replaced from script
	if old, ok := jar[name]; ok && old.HTTPOnly() && !old.expired(now) {
		return fmt.Errorf("%w: %s", ErrHTTPOnly, name)
	}
	jar[name] = c
	return nil
}
