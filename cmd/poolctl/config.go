package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/dreamware/dynclust/internal/pool"
)

// fileConfig is the on-disk shape of a pool definition: plain exported Go
// types with yaml tags, no custom unmarshalers.
type fileConfig struct {
	ClusterID   string   `yaml:"cluster_id"`
	DisplayName string   `yaml:"display_name"`
	Location    string   `yaml:"location"`
	MemberName  string   `yaml:"member_name"`
	Zones       []string `yaml:"zones"`

	Pool pool.Config `yaml:"pool"`
}

// loadFileConfig reads and parses a pool definition from path. An empty
// path returns a fileConfig holding only the defaults (InitialQuorumSize
// -1, everything else zero) so the CLI can run from flags alone.
func loadFileConfig(path string) (*fileConfig, error) {
	if path == "" {
		return &fileConfig{Pool: pool.Config{InitialQuorumSize: -1}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("poolctl: reading config %q: %w", path, err)
	}
	// InitialQuorumSize defaults to -1 ("same as initial") unless the file
	// explicitly sets it; yaml.Unmarshal only touches keys present in the
	// document, so seeding the default here before unmarshaling works.
	fc := fileConfig{Pool: pool.Config{InitialQuorumSize: -1}}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("poolctl: parsing config %q: %w", path, err)
	}
	return &fc, nil
}

// cliFlags holds the pflag overrides layered on top of the loaded file
// config.
type cliFlags struct {
	configPath  string
	initialSize int
	quorumSize  int
	zones       []string
	quarantine  bool
	growBy      int
	shrinkBy    int
}

func parseFlags(args []string) (*cliFlags, error) {
	fs := pflag.NewFlagSet("poolctl", pflag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVar(&f.configPath, "config", "", "path to a YAML pool definition")
	fs.IntVar(&f.initialSize, "initial-size", -1, "override the pool's initial size (-1 keeps the file value)")
	fs.IntVar(&f.quorumSize, "quorum-size", -2, "override the pool's initial quorum size (-2 keeps the file value, -1 means same-as-initial)")
	fs.StringSliceVar(&f.zones, "zones", nil, "override the availability zone names (comma-separated)")
	fs.BoolVar(&f.quarantine, "quarantine", false, "quarantine failed members instead of discarding them")
	fs.IntVar(&f.growBy, "grow-by", 0, "grow the pool by this many members after start")
	fs.IntVar(&f.shrinkBy, "shrink-by", 0, "shrink the pool by this many members after start")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// applyFlags layers cliFlags overrides onto fc.
func applyFlags(fc *fileConfig, f *cliFlags) {
	if f.initialSize >= 0 {
		fc.Pool.InitialSize = f.initialSize
	}
	if f.quorumSize != -2 {
		fc.Pool.InitialQuorumSize = f.quorumSize
	}
	if len(f.zones) > 0 {
		fc.Zones = f.zones
	}
	if f.quarantine {
		fc.Pool.QuarantineFailedEntities = true
	}
}
