package plans

import "strings"

// Tier order (single source of truth)
var tierOrder = []PlanID{Free, Basic, Professional, Enterprise}

// ParsePlanID normalizes user input ("Basic ", "PROFESSIONAL") to a known plan id.
func ParsePlanID(s string) (PlanID, bool) {
	id := PlanID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range tierOrder {
		if id == known {
			return id, true
		}
	}
	return id, false
}

// Rank returns the tier position of id, or -1 when unknown.
func Rank(id PlanID) int {
	for i, known := range tierOrder {
		if id == known {
			return i
		}
	}
	return -1
}
