package dc311

import (
	"github.com/civic311/dc311/internal/fscache"
	"github.com/civic311/dc311/internal/kvstore"
	"github.com/civic311/dc311/internal/runtimex"
	"github.com/civic311/dc311/internal/transport"
)

// NewHTTPTransport returns a new Transport using net/http. The logger
// MAY be nil, in which case we discard logs.
func NewHTTPTransport(logger Logger) Transport {
	return transport.NewHTTP(scrubbedLogger(logger))
}

// NewCachingTransport returns a Transport that saves successful GET
// responses into store and serves them from there while they are fresh
// according to "Cache-Control: max-age" or "Expires". Responses without
// such headers, or marked "no-cache" or "no-store", are not saved.
func NewCachingTransport(txp Transport, store KeyValueStore, logger Logger) Transport {
	runtimex.Assert(txp != nil, "dc311: passed a nil transport")
	runtimex.Assert(store != nil, "dc311: passed a nil store")
	return &transport.Cache{
		Logger:    scrubbedLogger(logger),
		Store:     store,
		Transport: txp,
	}
}

// NewMemoryStore returns an empty in-memory KeyValueStore.
func NewMemoryStore() KeyValueStore {
	return &kvstore.Memory{}
}

// NewDirStore returns a KeyValueStore saving entries inside dirpath,
// which is created when needed.
func NewDirStore(dirpath string) KeyValueStore {
	return fscache.New(dirpath)
}
