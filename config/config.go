package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"bigbangchain/crypto"
	"bigbangchain/native/params"
)

// Storage backend names accepted in the config file.
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

type Config struct {
	DataDir        string  `toml:"DataDir"`
	StorageBackend string  `toml:"StorageBackend"`
	Genesis        Genesis `toml:"genesis"`
	Roles          Roles   `toml:"roles"`
}

// Genesis carries the business parameters seeded into the parameter store on
// first boot. Monetary amounts are decimal strings in the smallest unit.
type Genesis struct {
	BaseFeed                 string `toml:"BaseFeed"`
	OwnerFeePercent          uint64 `toml:"OwnerFeePercent"`
	VoteFee                  string `toml:"VoteFee"`
	LendingLimitationPercent uint64 `toml:"LendingLimitationPercent"`
	LowestPrice              string `toml:"LowestPrice"`
	HighestPrice             string `toml:"HighestPrice"`
	RepaymentPeriodDays      uint64 `toml:"RepaymentPeriodDays"`
}

// Roles lists the bech32 addresses granted each protocol role at genesis.
type Roles struct {
	Admins    []string `toml:"Admins"`
	Adjusters []string `toml:"Adjusters"`
	Owner     string   `toml:"Owner"`
}

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./bigbang-data"
	}
	if strings.TrimSpace(c.StorageBackend) == "" {
		c.StorageBackend = BackendLevelDB
	}
	if c.Roles.Admins == nil {
		c.Roles.Admins = []string{}
	}
	if c.Roles.Adjusters == nil {
		c.Roles.Adjusters = []string{}
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:        "./bigbang-data",
		StorageBackend: BackendLevelDB,
		Genesis: Genesis{
			OwnerFeePercent:          10,
			VoteFee:                  "1000000000000000000",
			LendingLimitationPercent: 90,
			LowestPrice:              "800000000000000000000",
			HighestPrice:             "1000000000000000000000",
			RepaymentPeriodDays:      30,
		},
		Roles: Roles{Admins: []string{}, Adjusters: []string{}},
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// BusinessParameters converts the genesis section into the canonical form the
// parameter store accepts.
func (c *Config) BusinessParameters() (params.BusinessParameters, error) {
	p := params.BusinessParameters{
		OwnerFeePercent:          c.Genesis.OwnerFeePercent,
		LendingLimitationPercent: c.Genesis.LendingLimitationPercent,
		RepaymentPeriodDays:      c.Genesis.RepaymentPeriodDays,
	}
	if feed := strings.TrimSpace(c.Genesis.BaseFeed); feed != "" {
		addr, err := crypto.DecodeAddress(feed)
		if err != nil {
			return params.BusinessParameters{}, fmt.Errorf("genesis: invalid BaseFeed: %w", err)
		}
		p.BaseFeed = addr
	}
	var err error
	if p.VoteFee, err = parseAmount("VoteFee", c.Genesis.VoteFee); err != nil {
		return params.BusinessParameters{}, err
	}
	if p.LowestPrice, err = parseAmount("LowestPrice", c.Genesis.LowestPrice); err != nil {
		return params.BusinessParameters{}, err
	}
	if p.HighestPrice, err = parseAmount("HighestPrice", c.Genesis.HighestPrice); err != nil {
		return params.BusinessParameters{}, err
	}
	p.EnsureDefaults()
	return p, nil
}

func parseAmount(field, value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("genesis: invalid %s %q", field, value)
	}
	return amount, nil
}
