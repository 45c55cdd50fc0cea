package bridge

import (
	"fmt"
	"net/url"

	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/jrsteele09/go-mfe-bridge/hostenv"
	"github.com/jrsteele09/go-mfe-bridge/internal/errors"
)

type source struct {
	name string
	read func() (any, error)
}

// snapshotSources lists the host data sources in priority order.
func (c *Consumer) snapshotSources() []source {
	return []source{
		{name: "hostSharedData", read: c.env.ReadSharedState},
		{name: "getMfeData", read: c.env.ReadAccessorFn},
		{name: "mfeSharedDataService", read: c.env.ReadServiceAccessor},
	}
}

// readSnapshot returns the first non-empty snapshot the host offers. A source
// that is missing or fails counts as empty.
func (c *Consumer) readSnapshot() hostdata.BridgeData {
	for _, src := range c.snapshotSources() {
		raw, err := safeRead(src)
		if err != nil {
			c.logSourceError(src.name, err)
			continue
		}
		data := hostdata.Normalize(raw)
		if data.IsEmpty() {
			continue
		}
		c.logger.Debug().Str("source", src.name).Msg("Read host data")
		return data
	}
	return hostdata.BridgeData{}
}

// readURL returns the data carried in the page query string.
func (c *Consumer) readURL() hostdata.BridgeData {
	var query url.Values
	_, err := safeRead(source{name: "location", read: func() (any, error) {
		q, err := c.env.ReadQuery()
		query = q
		return nil, err
	}})
	if err != nil {
		c.logSourceError("location", err)
		return hostdata.BridgeData{}
	}
	return hostdata.Normalize(hostdata.FromQuery(query))
}

// readAll combines the host snapshot with the URL data. URL values win.
func (c *Consumer) readAll() hostdata.BridgeData {
	return hostdata.Merge(c.readSnapshot(), c.readURL())
}

func (c *Consumer) logSourceError(name string, err error) {
	if errors.Is(err, hostenv.ErrUnavailable) {
		c.logger.Debug().Str("source", name).Msg("Host source not available")
		return
	}
	c.logger.Warn().Err(err).Str("source", name).Msg("Host source failed")
}

// safeRead isolates a single source so that a panicking adapter only costs
// the data from that source.
func safeRead(src source) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v: %w", src.name, r, errors.ErrSourceThrew)
		}
	}()
	return src.read()
}
