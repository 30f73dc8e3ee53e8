// Package seed loads hunt definitions that are created at startup.
package seed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// Hunt is one hunt definition as written in a seed file:
//
//	hunts:
//	  - id: festival
//	    teams:
//	      red: Rojos
//	      yellow: Amarillos
//	    qrCodes:
//	      A001: 10
//	      A002: 20
type Hunt struct {
	ID        string                       `yaml:"id"`
	TeamNames map[treasurehunt.Team]string `yaml:"teams"`
	QRCodes   map[string]int               `yaml:"qrCodes"`
}

type File struct {
	Hunts []Hunt `yaml:"hunts"`
}

// Setup converts h into the reducer's setup description.
func (h Hunt) Setup() treasurehunt.Setup {
	return treasurehunt.Setup{TeamNames: h.TeamNames, QRCodes: h.QRCodes}
}

// Load reads and validates a seed file.
func Load(path string) ([]Hunt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]Hunt, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	seen := make(map[string]bool, len(f.Hunts))
	for i, h := range f.Hunts {
		h.ID = strings.TrimSpace(h.ID)
		if h.ID == "" {
			return nil, fmt.Errorf("hunt #%d: id is required", i+1)
		}
		if seen[h.ID] {
			return nil, fmt.Errorf("hunt %s: defined twice", h.ID)
		}
		seen[h.ID] = true
		if _, err := treasurehunt.NewState(h.Setup()); err != nil {
			return nil, fmt.Errorf("hunt %s: %w", h.ID, err)
		}
		f.Hunts[i] = h
	}
	return f.Hunts, nil
}

// Default is the demo hunt created when no seed file is configured.
func Default() []Hunt {
	return []Hunt{{
		ID: "demo",
		TeamNames: map[treasurehunt.Team]string{
			treasurehunt.TeamRed:    "Red Team",
			treasurehunt.TeamYellow: "Yellow Team",
		},
		QRCodes: map[string]int{
			"A001": 10,
			"A002": 10,
			"A003": 20,
			"A004": 30,
			"A005": 50,
		},
	}}
}
