package entities

import (
	"regexp"
	"strconv"
	"strings"
)

// ModuleIDSeparator separates the course key from the disambiguator in a module id.
const ModuleIDSeparator = "_"

// Course describes one disaster-topic course of the catalog.
type Course struct {
	Key       string   // course key used as module id prefix, case-sensitive
	Title     string   // page heading
	Tokens    []string // lowercase heading tokens identifying the course
	BadgeIcon string   // badge icon name
	Badge     string   // badge title
	Modules   []string // module sub-header titles in page order
}

// Total returns the number of modules required for 100% completion.
func (c Course) Total() int {
	return len(c.Modules)
}

// ModuleID composes the module id of the module at index.
func (c Course) ModuleID(index int) string {
	return ModuleID(c.Key, Disambiguator(index, c.moduleTitle(index)))
}

func (c Course) moduleTitle(index int) string {
	if index < 0 || index >= len(c.Modules) {
		return ""
	}
	return c.Modules[index]
}

// Catalog is the fixed, ordered course catalog.
var Catalog = []Course{
	{
		Key:       "floods",
		Title:     "Flood Preparedness",
		Tokens:    []string{"flood"},
		BadgeIcon: "💧",
		Badge:     "Flood Expert",
		Modules: []string{
			"Understanding Flood Risk",
			"Flood Warnings and Alerts",
			"Preparing Your Home",
			"Emergency Kit Essentials",
			"Evacuation Routes",
			"Staying Safe During a Flood",
			"Recovery After a Flood",
		},
	},
	{
		Key:       "earthquakes",
		Title:     "Earthquake Safety",
		Tokens:    []string{"earthquake"},
		BadgeIcon: "🏢",
		Badge:     "Earthquake Expert",
		Modules: []string{
			"How Earthquakes Happen",
			"Securing Your Space",
			"Drop, Cover and Hold On",
			"Emergency Communication Plan",
			"After the Shaking Stops",
			"Aftershocks and Structural Damage",
			"Community Recovery",
		},
	},
	{
		Key:       "landslides",
		Title:     "Landslide Awareness",
		Tokens:    []string{"landslide"},
		BadgeIcon: "⛰️",
		Badge:     "Landslide Expert",
		Modules: []string{
			"What Causes Landslides",
			"Recognizing Warning Signs",
			"Land Use and Slope Safety",
			"Evacuation Planning",
			"During a Landslide",
			"After a Landslide",
		},
	},
	{
		Key:       "forestFires",
		Title:     "Forest Fire Safety",
		Tokens:    []string{"forest fire", "wildfire"},
		BadgeIcon: "🔥",
		Badge:     "Forest Fire Expert",
		Modules: []string{
			"Fire Behaviour Basics",
			"Creating Defensible Space",
			"Fire Danger Ratings",
			"Go-Bag and Evacuation",
			"Smoke and Air Quality",
			"Sheltering in Place",
			"Returning Home Safely",
		},
	},
	{
		Key:       "tsunami",
		Title:     "Tsunami Readiness",
		Tokens:    []string{"tsunami"},
		BadgeIcon: "🌊",
		Badge:     "Tsunami Expert",
		Modules: []string{
			"How Tsunamis Form",
			"Natural Warning Signs",
			"Official Warning Systems",
			"Finding High Ground",
			"Evacuation Drills",
			"Surviving the Waves",
			"After a Tsunami",
		},
	},
	{
		Key:       "cyclones",
		Title:     "Cyclone Preparedness",
		Tokens:    []string{"cyclone", "hurricane"},
		BadgeIcon: "🌀",
		Badge:     "Cyclone Expert",
		Modules: []string{
			"Cyclone Formation",
			"Cyclone Categories",
			"Reading Forecasts",
			"Preparing Your Property",
			"Emergency Supplies",
			"Sheltering Safely",
			"The Eye of the Storm",
			"Post-Cyclone Hazards",
		},
	},
	{
		Key:       "chemical",
		Title:     "Chemical Disaster Response",
		Tokens:    []string{"chemical"},
		BadgeIcon: "🧪",
		Badge:     "Chemical Expert",
		Modules: []string{
			"Types of Chemical Hazards",
			"Industrial Accident Scenarios",
			"Hazard Labels and Symbols",
			"Shelter-in-Place Procedures",
			"Evacuation Orders",
			"Protective Equipment",
			"Decontamination Basics",
			"First Aid for Exposure",
			"Household Chemical Safety",
			"Community Response Plans",
		},
	},
	{
		Key:       "biological",
		Title:     "Biological Disaster Response",
		Tokens:    []string{"biological", "pandemic"},
		BadgeIcon: "🦠",
		Badge:     "Biological Expert",
		Modules: []string{
			"Biological Hazards Overview",
			"How Diseases Spread",
			"Personal Hygiene Practices",
			"Masks and Protective Gear",
			"Vaccination and Immunity",
			"Quarantine and Isolation",
			"Caring for the Sick at Home",
			"Food and Water Safety",
			"Mental Health During Outbreaks",
			"Public Health Communication",
			"Returning to Normal Life",
		},
	},
	{
		Key:       "nuclear",
		Title:     "Nuclear Emergency Preparedness",
		Tokens:    []string{"nuclear", "radiation"},
		BadgeIcon: "☢️",
		Badge:     "Nuclear Expert",
		Modules: []string{
			"Radiation Basics",
			"Sources of Nuclear Risk",
			"Warning and Alert Systems",
			"Time, Distance and Shielding",
			"Sheltering Indoors",
			"Potassium Iodide",
			"Evacuation Zones",
			"Contamination Control",
			"Food and Water After Fallout",
			"Long-Term Health Effects",
			"Recovery and Resettlement",
		},
	},
}

// CourseTotals returns the current module totals for every catalog course.
func CourseTotals() map[string]int {
	totals := make(map[string]int, len(Catalog))
	for _, c := range Catalog {
		totals[c.Key] = c.Total()
	}
	return totals
}

// CourseByKey returns the catalog course with the given key.
func CourseByKey(key string) (Course, bool) {
	for _, c := range Catalog {
		if c.Key == key {
			return c, true
		}
	}
	return Course{}, false
}

// IdentifyCourse returns the key of the first catalog course whose tokens
// occur in the heading, ignoring case.
func IdentifyCourse(heading string) (string, bool) {
	text := strings.ToLower(heading)
	for _, c := range Catalog {
		for _, token := range c.Tokens {
			if strings.Contains(text, token) {
				return c.Key, true
			}
		}
	}
	return "", false
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify turns a module sub-header title into a module id disambiguator.
func Slugify(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonSlugChars.ReplaceAllString(s, "")
}

// Disambiguator returns the slug of the sub-header title, falling back to
// an index-based suffix when the title yields no slug.
func Disambiguator(index int, title string) string {
	if slug := Slugify(title); slug != "" {
		return slug
	}
	return "module-" + strconv.Itoa(index)
}

// ModuleID composes a module id from a course key and a disambiguator.
func ModuleID(courseKey, disambiguator string) string {
	return courseKey + ModuleIDSeparator + disambiguator
}

// CourseKeyOf extracts the course key prefix of a module id.
func CourseKeyOf(moduleID string) string {
	key, _, _ := strings.Cut(moduleID, ModuleIDSeparator)
	return key
}
