package telemetry

import (
	"strings"

	"smartbin-backend/internal/models"
)

const defaultCapacity = 120

type keyword struct {
	match string
	value string
}

// Matched in order, first hit wins.
var locationKeywords = []keyword{
	{"lobby", "Lobby"},
	{"kitchen", "Kitchen"},
	{"cafeteria", "Cafeteria"},
	{"canteen", "Cafeteria"},
	{"office", "Office"},
	{"parking", "Parking Lot"},
	{"park", "Park"},
	{"street", "Street"},
	{"station", "Station"},
	{"hospital", "Hospital"},
	{"school", "School"},
	{"campus", "Campus"},
	{"mall", "Shopping Mall"},
	{"market", "Market"},
}

// Every hit is collected.
var wasteTypeKeywords = []keyword{
	{"recycl", "recyclable"},
	{"rec", "recyclable"},
	{"organic", "organic"},
	{"compost", "organic"},
	{"food", "organic"},
	{"paper", "paper"},
	{"plastic", "plastic"},
	{"glass", "glass"},
	{"metal", "metal"},
	{"haz", "hazardous"},
	{"ewaste", "e-waste"},
	{"e-waste", "e-waste"},
	{"general", "general"},
}

var capacityKeywords = []struct {
	match    string
	capacity float64
}{
	{"xl", 360},
	{"large", 240},
	{"smart", 240},
	{"medium", 120},
	{"small", 60},
	{"mini", 30},
}

// SuggestAttributes guesses bin attributes from a device's name and ID.
// When nothing matches the suggestion carries neutral defaults and
// Matched is false; it never blocks manual entry.
func SuggestAttributes(device models.Device) models.DeviceSuggestion {
	haystack := strings.ToLower(device.Name + " " + device.DeviceID)

	suggestion := models.DeviceSuggestion{
		DeviceID: device.DeviceID,
		Name:     device.Name,
		Capacity: defaultCapacity,
	}
	if suggestion.Name == "" {
		suggestion.Name = device.DeviceID
	}

	for _, k := range locationKeywords {
		if strings.Contains(haystack, k.match) {
			suggestion.Location = k.value
			suggestion.Matched = true
			break
		}
	}

	seen := map[string]bool{}
	for _, k := range wasteTypeKeywords {
		if strings.Contains(haystack, k.match) && !seen[k.value] {
			seen[k.value] = true
			suggestion.WasteTypes = append(suggestion.WasteTypes, k.value)
			suggestion.Matched = true
		}
	}

	for _, k := range capacityKeywords {
		if strings.Contains(haystack, k.match) {
			suggestion.Capacity = k.capacity
			suggestion.Matched = true
			break
		}
	}

	if len(suggestion.WasteTypes) == 0 {
		suggestion.WasteTypes = []string{"general"}
	}
	return suggestion
}
