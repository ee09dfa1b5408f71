package fleet

import (
	"strings"

	"fleetmap-service/internal/domain/fleet"
)

// MaxSearchResults caps the search dropdown.
const MaxSearchResults = 8

// Search matches the query as a case-insensitive substring of plate, model or
// driver name. Results keep list order.
func Search(vehicles []fleet.Vehicle, query string) fleet.SearchResult {
	res := fleet.SearchResult{Query: query, Results: []fleet.Vehicle{}}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return res
	}
	res.Active = true

	for _, v := range vehicles {
		if matches(v, needle) {
			res.Results = append(res.Results, v)
			if len(res.Results) == MaxSearchResults {
				break
			}
		}
	}
	return res
}

func matches(v fleet.Vehicle, needle string) bool {
	if strings.Contains(strings.ToLower(v.PlateNumber), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(v.Model), needle) {
		return true
	}
	return v.DriverName != nil && strings.Contains(strings.ToLower(*v.DriverName), needle)
}
