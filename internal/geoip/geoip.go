// Package geoip turns a client address into approximate coordinates using a
// MaxMind City database.
package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

type Locator struct {
	db *geoip2.Reader
}

func Open(path string) (*Locator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip db: %w", err)
	}
	return &Locator{db: db}, nil
}

// Locate reports ok=false for private, malformed or unknown addresses.
func (l *Locator) Locate(ip string) (float64, float64, bool) {
	if l == nil || l.db == nil {
		return 0, 0, false
	}
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil || addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return 0, 0, false
	}
	rec, err := l.db.City(addr)
	if err != nil {
		return 0, 0, false
	}
	lat, lon := rec.Location.Latitude, rec.Location.Longitude
	if lat == 0 && lon == 0 {
		return 0, 0, false
	}
	return lat, lon, true
}

func (l *Locator) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
