package hostenv

import (
	"fmt"
	"os"

	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"gopkg.in/yaml.v3"
)

// LoadSeed reads initial shared host data from a YAML document.
func LoadSeed(path string) (hostdata.RawRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(b)
}

// ParseSeed decodes a YAML mapping into a RawRecord.
func ParseSeed(b []byte) (hostdata.RawRecord, error) {
	var rec map[string]any
	if err := yaml.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if rec == nil {
		return hostdata.RawRecord{}, nil
	}
	return hostdata.RawRecord(rec), nil
}
