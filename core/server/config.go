package server

// Config holds settings for the game server whose master data is imported.
type Config struct {
	// Region selects which published dump is read (jp, na).
	Region string `mapstructure:"region" default:"jp"`
}

const (
	RegionJP = "jp"
	RegionNA = "na"
)

// IsValidRegion checks if the configured region is supported.
func (c Config) IsValidRegion() bool {
	switch c.Region {
	case RegionJP, RegionNA:
		return true
	default:
		return false
	}
}

// DumpPrefix returns the storage prefix under which the region's dump tables live.
func (c Config) DumpPrefix() string {
	return "masterdata/" + c.Region
}
