package model

import (
	"fmt"
	"time"
)

// HoursPerYear is the length of every hourly production series.
const HoursPerYear = 8760

type InstallationType string

const (
	InstallationCanopy      InstallationType = "canopy"
	InstallationFlatRoof    InstallationType = "flat_roof"
	InstallationPitchedRoof InstallationType = "pitched_roof"
	InstallationGround      InstallationType = "ground"
)

// InstallationInfo holds display name and the legacy slug used in parameter files.
type InstallationInfo struct {
	Name   string
	Legacy string
}

// InstallationCatalog maps every known InstallationType to its display info.
var InstallationCatalog = map[InstallationType]InstallationInfo{
	InstallationCanopy:      {Name: "Canopy", Legacy: "ombriere"},
	InstallationFlatRoof:    {Name: "Flat Roof", Legacy: "toiture_plane"},
	InstallationPitchedRoof: {Name: "Pitched Roof", Legacy: "toiture_inclinee"},
	InstallationGround:      {Name: "Ground Mount", Legacy: "sol"},
}

// legacyToInstallationType is the reverse of InstallationCatalog's Legacy slugs.
var legacyToInstallationType map[string]InstallationType

func init() {
	legacyToInstallationType = make(map[string]InstallationType, len(InstallationCatalog))
	for it, info := range InstallationCatalog {
		legacyToInstallationType[info.Legacy] = it
	}
}

// ParseInstallationType accepts either the canonical name or the legacy slug.
func ParseInstallationType(s string) (InstallationType, error) {
	it := InstallationType(s)
	if _, ok := InstallationCatalog[it]; ok {
		return it, nil
	}
	if it, ok := legacyToInstallationType[s]; ok {
		return it, nil
	}
	return "", fmt.Errorf("unknown installation type %q", s)
}

// Name returns the display name, falling back to the raw value.
func (t InstallationType) Name() string {
	if info, ok := InstallationCatalog[t]; ok {
		return info.Name
	}
	return string(t)
}

// Orientation is the azimuth category of a unit ("south", "east", ...).
type Orientation string

// Tilt is the tilt category of a unit, in degrees.
type Tilt int

// Reading is one sample of the reference production curve.
type Reading struct {
	Timestamp time.Time
	Value     float64
	Unit      string
}

type TimeRange struct {
	Start time.Time
	End   time.Time
}
