// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backend

import (
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/diffeo/go-restmount/bolt"
	"github.com/diffeo/go-restmount/cache"
	"github.com/diffeo/go-restmount/memory"
	"github.com/diffeo/go-restmount/restclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	tests := []struct {
		param   string
		impl    string
		address string
		ok      bool
	}{
		{"memory", "memory", "", true},
		{"postgres", "postgres", "", true},
		{"postgres:dbname=x", "postgres", "dbname=x", true},
		{"postgres://u@h/db", "postgres", "//u@h/db", true},
		{"bolt:/tmp/x.db", "bolt", "/tmp/x.db", true},
		{"http://localhost:5980/api", "http", "//localhost:5980/api", true},
		{"bolt", "", "", false},
		{"redis:x", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		var b Backend
		err := b.Set(tt.param)
		if tt.ok {
			if assert.NoError(t, err, tt.param) {
				assert.Equal(t, tt.impl, b.Implementation, tt.param)
				assert.Equal(t, tt.address, b.Address, tt.param)
				assert.Equal(t, tt.param, b.String())
			}
		} else {
			assert.Error(t, err, tt.param)
		}
	}
}

func TestFlag(t *testing.T) {
	b := Backend{Implementation: "memory"}
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.Var(&b, "backend", "impl:address of resource storage")
	require.NoError(t, flags.Parse([]string{"-backend", "bolt:x.db"}))
	assert.Equal(t, Backend{Implementation: "bolt", Address: "x.db"}, b)
}

func TestContainer(t *testing.T) {
	b := Backend{Implementation: "memory"}
	c, err := b.Container()
	require.NoError(t, err)
	assert.IsType(t, &memory.Container{}, c)

	b.Cache = 16
	c, err = b.Container()
	require.NoError(t, err)
	assert.IsType(t, &cache.Container{}, c)

	b = Backend{Implementation: "http", Address: "//localhost:5980/api"}
	c, err = b.Container()
	require.NoError(t, err)
	assert.IsType(t, &restclient.Container{}, c)

	b = Backend{Implementation: "http", Address: "nowhere"}
	_, err = b.Container()
	assert.Equal(t, restclient.ErrNoServer, err)

	dir, err := ioutil.TempDir("", "restmount-backend")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	b = Backend{Implementation: "bolt", Address: filepath.Join(dir, "x.db")}
	c, err = b.Container()
	require.NoError(t, err)
	if assert.IsType(t, &bolt.Container{}, c) {
		assert.NoError(t, c.(*bolt.Container).Close())
	}

	b = Backend{Implementation: "nothing"}
	_, err = b.Container()
	assert.Error(t, err)
}
