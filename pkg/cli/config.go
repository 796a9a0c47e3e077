package cli

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// loxrcFileName is the optional per-directory config file (spec_full.md's
// ambient-configuration section). Its absence is not an error.
const loxrcFileName = ".loxrc.yaml"

// loxrcConfig carries the VM tuning knobs a `.loxrc.yaml` may set. None of
// these change language semantics — only VM instrumentation and GC timing.
type loxrcConfig struct {
	GCStressTest       bool `yaml:"gcStressTest"`
	TraceExecution     bool `yaml:"traceExecution"`
	InitialGCThreshold int  `yaml:"initialGCThreshold"`
}

// loadLoxrc looks for .loxrc.yaml in dir and parses it if present. A missing
// file yields a zero-value config and no error; a malformed one is reported
// to the caller so Run can decide how to fail.
func loadLoxrc(dir string) (loxrcConfig, error) {
	var cfg loxrcConfig
	data, err := os.ReadFile(filepath.Join(dir, loxrcFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
