// Package soil derives a best-effort soil and climate profile for a coordinate.
package soil

import (
	"strings"

	"kisansetu-be/pkg/advisory"
)

type Source string

const (
	SourceLLM             Source = "LLM"
	SourceRegionHeuristic Source = "RegionHeuristic"
	SourceGenericDefault  Source = "GenericDefault"
)

// Profile values are human-readable strings with units embedded ("6.5-7.5", "35%").
type Profile struct {
	Country     string `json:"country"`
	Region      string `json:"region"`
	SoilType    string `json:"soilType"`
	PH          string `json:"ph"`
	Clay        string `json:"clay"`
	Sand        string `json:"sand"`
	Silt        string `json:"silt"`
	Nitrogen    string `json:"nitrogen"`
	Climate     string `json:"climate"`
	Description string `json:"description"`
	Source      Source `json:"source"`
}

var indiaDefault = Profile{
	Country:     "India",
	Region:      "Indo-Gangetic and Deccan plains",
	SoilType:    "Alluvial Clay Loam",
	PH:          "6.5-7.5",
	Clay:        "35%",
	Sand:        "30%",
	Silt:        "35%",
	Nitrogen:    "Medium",
	Climate:     "Tropical Monsoon",
	Description: "Fertile alluvial clay loam with good water retention, suited to rice, wheat, sugarcane and pulses.",
	Source:      SourceRegionHeuristic,
}

var genericDefault = Profile{
	Country:     "Unknown",
	Region:      "Unknown",
	SoilType:    "Mixed Soil",
	PH:          "6.0-7.5",
	Clay:        "25%",
	Sand:        "40%",
	Silt:        "35%",
	Nitrogen:    "Medium",
	Climate:     "Temperate",
	Description: "Mixed loamy soil of moderate fertility. A local soil test is recommended before planning fertilizer use.",
	Source:      SourceGenericDefault,
}

// InIndia reports whether c falls in the approximate bounding box used by the region heuristic.
func InIndia(c advisory.Coordinates) bool {
	return c.Latitude >= 8.0 && c.Latitude <= 37.0 && c.Longitude >= 68.0 && c.Longitude <= 97.0
}

// DefaultFor returns the fixed profile the region heuristic picks for c.
func DefaultFor(c advisory.Coordinates) Profile {
	if InIndia(c) {
		return indiaDefault
	}
	return genericDefault
}

// Complete reports whether every text field is non-empty.
func (p Profile) Complete() bool {
	for _, f := range p.fields() {
		if strings.TrimSpace(*f) == "" {
			return false
		}
	}
	return true
}

func (p *Profile) fields() []*string {
	return []*string{
		&p.Country, &p.Region, &p.SoilType, &p.PH, &p.Clay,
		&p.Sand, &p.Silt, &p.Nitrogen, &p.Climate, &p.Description,
	}
}

// backfill copies every blank field from d. Source is left untouched.
func (p *Profile) backfill(d Profile) {
	dst := p.fields()
	src := d.fields()
	for i := range dst {
		if strings.TrimSpace(*dst[i]) == "" {
			*dst[i] = *src[i]
		}
	}
}
