package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/apex/log"
	"github.com/civic311/dc311/internal/fscache"
	"github.com/civic311/dc311/internal/logx"
	"github.com/civic311/dc311/pkg/dc311"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// app is the state shared by all the subcommands.
type app struct {
	cache   *fscache.Cache
	logger  *log.Logger
	options *Options
	service *dc311.Service
	stdout  io.Writer
}

// heading is the color used for headings.
var heading = color.New(color.Bold)

// setup loads the configuration and creates the service.
func (a *app) setup(stderr io.Writer) error {
	a.logger = logx.NewLogger(stderr, a.options.Verbose)
	if a.options.EnvFile != "" {
		err := godotenv.Load(a.options.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "cannot load %s", a.options.EnvFile)
		}
		if err == nil {
			a.logger.Debugf("loaded environment from %s", a.options.EnvFile)
		}
	}
	a.options.APIKey = valueOrEnv(a.options.APIKey, "DC311_APIKEY")
	a.options.BaseURL = valueOrEnv(a.options.BaseURL, "DC311_BASE_URL")
	a.options.CacheDir = valueOrEnv(a.options.CacheDir, "DC311_CACHE_DIR")
	config := dc311.Config{
		APIKey:  a.options.APIKey,
		BaseURL: a.options.BaseURL,
		Logger:  a.logger,
	}
	if a.options.CacheDir != "" {
		a.cache = fscache.New(a.options.CacheDir)
		config.Transport = dc311.NewCachingTransport(
			dc311.NewHTTPTransport(a.logger), a.cache, a.logger)
		a.logger.Debugf("caching responses inside %s", a.options.CacheDir)
	}
	a.service = dc311.NewService(config)
	a.logger.Debugf("using %s", a.service)
	return nil
}

// teardown removes stale cache entries.
func (a *app) teardown() {
	if a.cache == nil {
		return
	}
	if count := a.cache.Trim(); count > 0 {
		a.logger.Debugf("removed %d stale cache entries", count)
	}
}

// valueOrEnv returns value if not empty and otherwise the
// value of the given environment variable.
func valueOrEnv(value, name string) string {
	if value != "" {
		return value
	}
	return os.Getenv(name)
}

// printJSON writes value as indented JSON.
func (a *app) printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot serialize output")
	}
	_, err = fmt.Fprintln(a.stdout, string(data))
	return err
}

// print writes value as JSON when --json is set and otherwise
// using its String method.
func (a *app) print(value fmt.Stringer) error {
	if a.options.JSON {
		return a.printJSON(value)
	}
	_, err := fmt.Fprintln(a.stdout, value.String())
	return err
}

// printScalar writes a single named result.
func (a *app) printScalar(name, value string) error {
	if a.options.JSON {
		return a.printJSON(map[string]string{name: value})
	}
	_, err := fmt.Fprintln(a.stdout, value)
	return err
}
