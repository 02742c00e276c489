package step

import (
	"fmt"
	"os"
	"strings"
)

// solidEntities are the part 42 entities that carry actual BREP geometry.
// A STEP file without any of them may parse but contains no solid.
var solidEntities = []string{
	"FACETED_BREP",
	"MANIFOLD_SOLID_BREP",
	"BREP_WITH_VOIDS",
	"ADVANCED_BREP_SHAPE_REPRESENTATION",
	"SHELL_BASED_SURFACE_MODEL",
}

// Validate checks a STEP file structurally: part 21 framing plus at least
// one solid-bearing entity. External converters sometimes exit zero while
// writing an empty or truncated file, so their output is never trusted on
// exit status alone.
func Validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read STEP file: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("STEP file is empty")
	}

	content := string(data)
	for _, token := range []string{"ISO-10303-21", "HEADER", "FILE_SCHEMA", "DATA", "ENDSEC", "END-ISO-10303-21"} {
		if !strings.Contains(content, token) {
			return fmt.Errorf("STEP file is missing %s section", token)
		}
	}

	for _, entity := range solidEntities {
		if strings.Contains(content, entity) {
			return nil
		}
	}
	return fmt.Errorf("STEP file contains no solid geometry")
}
