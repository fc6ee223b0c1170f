package models

import (
	"fmt"
	"strings"
)

// ImportMode selects how records are driven into a sink.
type ImportMode string

const (
	// ImportModeBulk adds every record in one synchronous pass.
	ImportModeBulk ImportMode = "bulk"
	// ImportModeStepwise adds one record per external trigger.
	ImportModeStepwise ImportMode = "stepwise"
)

// ParseImportMode resolves a mode name. An empty name means bulk.
func ParseImportMode(s string) (ImportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ImportModeBulk):
		return ImportModeBulk, nil
	case string(ImportModeStepwise), "step":
		return ImportModeStepwise, nil
	default:
		return "", fmt.Errorf("unknown import mode: %s (use: bulk or stepwise)", s)
	}
}
