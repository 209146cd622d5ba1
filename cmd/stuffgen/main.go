// stuffgen: synthetic 3D container-stuffing episode generator
//
// Generates datasets of packing episodes for training placement policies
// and previews them as PDF, Excel and DXF reports.
//
// Build:
//   go build -o stuffgen ./cmd/stuffgen
//
// Generate 1000 random3d episodes:
//   stuffgen generate --mode random3d --n-sequences 1000 --out-dir data/synthetic

package main

import (
	"os"

	"github.com/piwi3910/StuffGen/cmd/stuffgen/commands"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
