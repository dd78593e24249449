package helpers

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxIdentifierSequence = 999

var wasteTypeCodes = map[string]string{
	"recyclable": "REC",
	"recycling":  "REC",
	"organic":    "ORG",
	"compost":    "ORG",
	"general":    "GEN",
	"landfill":   "GEN",
	"hazardous":  "HAZ",
	"paper":      "PAP",
	"cardboard":  "PAP",
	"plastic":    "PLA",
	"glass":      "GLA",
	"metal":      "MET",
	"e-waste":    "EWA",
	"ewaste":     "EWA",
	"electronic": "EWA",
}

// GenerateCompartmentIdentifier builds <SanitizedBinName>-<TypeCode>-<NNN>,
// probing upward from 001 past every identifier in existing. Once 999 is
// taken it falls back to a random suffix.
func GenerateCompartmentIdentifier(binName, wasteType string, existing []string) string {
	prefix := SanitizeBinName(binName) + "-" + WasteTypeCode(wasteType) + "-"

	taken := make(map[string]bool, len(existing))
	for _, id := range existing {
		taken[strings.ToUpper(id)] = true
	}

	for seq := 1; seq <= maxIdentifierSequence; seq++ {
		candidate := fmt.Sprintf("%s%03d", prefix, seq)
		if !taken[strings.ToUpper(candidate)] {
			return candidate
		}
	}

	return prefix + strings.ToUpper(uuid.New().String()[:8])
}

// SanitizeBinName keeps letters, digits, '_' and '-'. Empty results become "BIN".
func SanitizeBinName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "BIN"
	}
	return out
}

// WasteTypeCode maps a waste type to its three-letter code.
func WasteTypeCode(wasteType string) string {
	key := strings.ToLower(strings.TrimSpace(wasteType))
	if code, ok := wasteTypeCodes[key]; ok {
		return code
	}

	var b strings.Builder
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "GEN"
	}
	return b.String()
}
