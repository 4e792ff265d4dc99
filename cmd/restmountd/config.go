// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// fileConfig is the contents of the -config YAML file.
type fileConfig struct {
	// Path is the URL path the resources are mounted under.
	Path string `yaml:"path"`

	// Cache, if positive, caches this many records per resource.
	Cache int `yaml:"cache"`

	// Resources holds one resource definition per item.
	Resources []map[string]interface{} `yaml:"resources"`
}

func loadConfigYaml(filename string) (*fileConfig, error) {
	var result fileConfig
	bytes, err := ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	return &result, err
}

// definitions decodes the resource list.
func (cfg *fileConfig) definitions() ([]mapper.Definition, error) {
	defs := make([]mapper.Definition, len(cfg.Resources))
	for i, item := range cfg.Resources {
		def, err := mapper.DecodeDefinition(item)
		if err != nil {
			return nil, err
		}
		defs[i] = def
	}
	return defs, nil
}

// defineResources adds every configured resource to c.  Resources
// that a persistent backend already knows about are left alone.
func defineResources(c mapper.Definer, cfg *fileConfig) error {
	defs, err := cfg.definitions()
	if err != nil {
		return err
	}
	for _, def := range defs {
		_, err := c.DefineMapper(def)
		if _, dup := err.(mapper.ErrDuplicateMapper); dup {
			logrus.WithField("resource", def.Name).Debug("Resource already defined")
			continue
		}
		if err != nil {
			return err
		}
	}
	resourceCount.Set(float64(len(c.Mappers())))
	return nil
}
