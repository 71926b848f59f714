package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/civic311/dc311/internal/model"
	"github.com/pkg/errors"
)

// Cache is a model.Transport that caches successful GET responses
// inside a model.KeyValueStore. Other methods are forwarded unchanged.
//
// A response is stored only when it says for how long it is fresh,
// using either "Cache-Control: max-age" or "Expires", and it is served
// from the store only while it is still fresh. Responses without such
// information, or carrying "no-store" or "no-cache", are not stored.
type Cache struct {
	// Logger is the MANDATORY logger to use.
	Logger model.DebugLogger

	// Store is the MANDATORY key-value store.
	Store model.KeyValueStore

	// TimeNow is the OPTIONAL function returning the current time. If
	// nil, we use time.Now.
	TimeNow func() time.Time

	// Transport is the MANDATORY underlying transport.
	Transport model.Transport
}

var _ model.Transport = &Cache{}

// cacheEntry is the serialized form of a cached response.
type cacheEntry struct {
	Body     []byte                `json:"body"`
	Expires  time.Time             `json:"expires"`
	Headers  model.ResponseHeaders `json:"headers"`
	StoredAt time.Time             `json:"stored_at"`
}

// cacheKey returns the key used for the given request.
func cacheKey(URL string, headers map[string]string) string {
	return "GET " + URL + " " + headers["Accept"]
}

func (c *Cache) now() time.Time {
	if c.TimeNow != nil {
		return c.TimeNow()
	}
	return time.Now()
}

// Request implements model.Transport.
func (c *Cache) Request(ctx context.Context, URL, method string,
	headers map[string]string, body []byte) (model.ResponseHeaders, []byte, error) {
	if method != http.MethodGet {
		return c.Transport.Request(ctx, URL, method, headers, body)
	}
	key := cacheKey(URL, headers)
	now := c.now()
	switch entry, err := c.load(key); {
	case err != nil:
		c.Logger.Debugf("transport: cache miss for %s", URL)
	case !now.Before(entry.Expires):
		c.Logger.Debugf("transport: cache entry for %s is stale", URL)
	default:
		c.Logger.Debugf("transport: cache hit for %s", URL)
		return entry.Headers, entry.Body, nil
	}
	respHeaders, respBody, err := c.Transport.Request(ctx, URL, method, headers, body)
	if err != nil {
		return nil, nil, err
	}
	if expires, good := freshUntil(respHeaders, now); good {
		if err := c.store(key, respHeaders, respBody, now, expires); err != nil {
			c.Logger.Debugf("transport: cannot cache %s: %s", URL, err.Error())
		}
	}
	return respHeaders, respBody, nil
}

// freshUntil returns until when the given response is fresh and
// whether we can store it at all.
func freshUntil(headers model.ResponseHeaders, now time.Time) (time.Time, bool) {
	if headers.Status() != "200" {
		return time.Time{}, false
	}
	maxAge, hasMaxAge := int64(0), false
	for _, directive := range strings.Split(headers["cache-control"], ",") {
		name, value, _ := strings.Cut(strings.TrimSpace(directive), "=")
		switch strings.ToLower(name) {
		case "no-store", "no-cache":
			return time.Time{}, false
		case "max-age":
			seconds, err := strconv.ParseInt(strings.Trim(value, `"`), 10, 64)
			if err != nil {
				return time.Time{}, false
			}
			maxAge, hasMaxAge = seconds, true
		}
	}
	if hasMaxAge {
		if maxAge <= 0 {
			return time.Time{}, false
		}
		return now.Add(time.Duration(maxAge) * time.Second), true
	}
	expires, err := http.ParseTime(headers["expires"])
	if err != nil {
		return time.Time{}, false
	}
	// measure the lifetime against the server clock when possible
	if date, err := http.ParseTime(headers["date"]); err == nil {
		expires = now.Add(expires.Sub(date))
	}
	if !now.Before(expires) {
		return time.Time{}, false
	}
	return expires, true
}

func (c *Cache) load(key string) (*cacheEntry, error) {
	data, err := c.Store.Get(key)
	if err != nil {
		return nil, err
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, errors.Wrap(err, "cannot parse cache entry")
	}
	return &entry, nil
}

func (c *Cache) store(key string, headers model.ResponseHeaders,
	body []byte, storedAt, expires time.Time) error {
	entry := &cacheEntry{
		Body:     body,
		Expires:  expires,
		Headers:  headers,
		StoredAt: storedAt,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "cannot serialize cache entry")
	}
	return errors.Wrap(c.Store.Set(key, data), "cannot write cache entry")
}
