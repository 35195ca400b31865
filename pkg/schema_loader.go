package itest

import (
	"path/filepath"
	"strings"

	"github.com/mumoshu/itest/pkg/get"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

// LoadSchema reads a JSON schema from a local file or a remote go-getter source.
func LoadSchema(name, location string, fetcher *get.Fetcher) (*JSONSchema, error) {
	if fetcher == nil {
		fetcher = get.New()
	}

	bytes, err := fetcher.Bytes(location)
	if err != nil {
		return nil, errors.Wrapf(err, "failed loading json schema %s from %s", name, location)
	}

	log.WithFields(log.Fields{"schema": name}).Debugf("loaded json schema from %s", location)

	return NewJSONSchema(name, gojsonschema.NewBytesLoader(bytes))
}

// LoadSchemaRepository loads every location into a repository. Schemas are
// named after their file names without extension.
func LoadSchemaRepository(name string, locations []string, fetcher *get.Fetcher) (*SchemaRepository, error) {
	repo := &SchemaRepository{Name: name, Schemas: []*JSONSchema{}}

	for _, location := range locations {
		s, err := LoadSchema(SchemaNameFromLocation(location), location, fetcher)
		if err != nil {
			return nil, errors.Wrapf(err, "failed loading schema repository %s", name)
		}
		repo.Schemas = append(repo.Schemas, s)
	}

	return repo, nil
}

func SchemaNameFromLocation(location string) string {
	if i := strings.Index(location, "?"); i >= 0 {
		location = location[:i]
	}
	base := filepath.Base(location)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
