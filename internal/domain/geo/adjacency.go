// Package geo resolves which Spanish provinces and regions count as "nearby"
// for contract matching. The table is a curated adjacency list, not a GIS
// lookup: procurement locality strings are free text ("Comunitat Valenciana",
// "MADRID", "Sevilla capital") so matching is substring-based and
// case-insensitive.
package geo

import "strings"

const maxNearby = 5

var adjacency = map[string][]string{
	"Madrid":              {"Comunidad de Madrid", "Castilla-La Mancha", "Castilla y León", "Segovia", "Toledo", "Guadalajara"},
	"Barcelona":           {"Cataluña", "Catalunya", "Lleida", "Girona", "Tarragona"},
	"Valencia":            {"Comunidad Valenciana", "Comunitat Valenciana", "Alicante", "Castellón"},
	"Sevilla":             {"Andalucía", "Cádiz", "Córdoba", "Huelva"},
	"Murcia":              {"Región de Murcia", "Alicante", "Almería", "Albacete"},
	"Andalucía":           {"Sevilla", "Córdoba", "Granada", "Málaga", "Cádiz", "Huelva", "Jaén", "Almería"},
	"Cataluña":            {"Barcelona", "Girona", "Lleida", "Tarragona"},
	"Comunidad de Madrid": {"Madrid", "Segovia", "Toledo", "Guadalajara", "Ávila"},
	"Región de Murcia":    {"Murcia", "Alicante", "Almería"},
	"Castilla y León":     {"Madrid", "Valladolid", "Salamanca", "León", "Burgos"},
	"Galicia":             {"A Coruña", "Pontevedra", "Lugo", "Ourense"},
	"País Vasco":          {"Vizcaya", "Guipúzcoa", "Álava", "Navarra"},
	"Aragón":              {"Zaragoza", "Huesca", "Teruel", "Navarra", "Cataluña"},
}

// adjacencyOrder fixes iteration order over the table so lookups are
// deterministic.
var adjacencyOrder = []string{
	"Madrid", "Barcelona", "Valencia", "Sevilla", "Murcia",
	"Andalucía", "Cataluña", "Comunidad de Madrid", "Región de Murcia",
	"Castilla y León", "Galicia", "País Vasco", "Aragón",
}

// NearbyLocations returns up to five localities considered adjacent to the
// given one. The first pass matches the location against table keys in either
// containment direction; if none hits, a second pass matches it against the
// neighbor lists, returning the siblings plus the owning key. The input
// itself is excluded. Unknown locations yield nil.
func NearbyLocations(location string) []string {
	if location == "" {
		return nil
	}
	target := strings.ToUpper(location)

	var nearby []string
	for _, region := range adjacencyOrder {
		ru := strings.ToUpper(region)
		if strings.Contains(target, ru) || strings.Contains(ru, target) {
			nearby = append(nearby, adjacency[region]...)
			break
		}
	}

	if len(nearby) == 0 {
	outer:
		for _, region := range adjacencyOrder {
			for _, neighbor := range adjacency[region] {
				nu := strings.ToUpper(neighbor)
				if strings.Contains(target, nu) || strings.Contains(nu, target) {
					nearby = append(nearby, adjacency[region]...)
					nearby = append(nearby, region)
					break outer
				}
			}
		}
	}

	seen := make(map[string]struct{}, len(nearby))
	out := make([]string, 0, len(nearby))
	for _, z := range nearby {
		if strings.EqualFold(z, location) {
			continue
		}
		if _, dup := seen[z]; dup {
			continue
		}
		seen[z] = struct{}{}
		out = append(out, z)
		if len(out) == maxNearby {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// IsNearby reports whether candidate matches any locality adjacent to
// location, by case-insensitive substring in either direction.
func IsNearby(location, candidate string) bool {
	if location == "" || candidate == "" {
		return false
	}
	cu := strings.ToUpper(candidate)
	for _, zone := range NearbyLocations(location) {
		zu := strings.ToUpper(zone)
		if strings.Contains(cu, zu) || strings.Contains(zu, cu) {
			return true
		}
	}
	return false
}
