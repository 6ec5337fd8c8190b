package config

import (
	"errors"
	"fmt"

	"github.com/magiconair/properties"
)

// ImportProperties reads a target profile from a Java-style properties
// file, the format used by older uqtt test rigs. Recognized keys:
// target (required), name, bind, mode.
func ImportProperties(path string) (*Target, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("load properties file: %w", err)
	}

	addr, ok := p.Get("target")
	if !ok || addr == "" {
		return nil, errors.New("invalid profile: missing \"target\" key")
	}

	return &Target{
		Name: p.GetString("name", addr),
		Addr: addr,
		Bind: p.GetString("bind", ""),
		Mode: p.GetString("mode", ""),
	}, nil
}
