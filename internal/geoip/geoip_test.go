package geoip

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.mmdb"))
	assert.Error(t, err)
}

func TestLocateWithoutDatabase(t *testing.T) {
	var l *Locator
	_, _, ok := l.Locate("8.8.8.8")
	assert.False(t, ok)
	assert.NoError(t, l.Close())

	empty := &Locator{}
	for _, ip := range []string{"", "garbage", "127.0.0.1", "10.0.0.4"} {
		_, _, ok := empty.Locate(ip)
		assert.False(t, ok, ip)
	}
}
