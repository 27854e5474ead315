package goapicache

import "time"

// TTLMinutes holds the cache lifetime, in minutes, for each resource kind the
// policy table recognizes. A zero value means "use the default for that kind".
type TTLMinutes struct {
	// Item is the lifetime of a single item-detail response.
	Item int

	// ItemList is the lifetime of item collection responses, including
	// filtered and paginated variants.
	ItemList int

	// Featured is the lifetime of featured-item responses.
	Featured int

	// Categories is the lifetime of category listing responses.
	Categories int

	// Favorites is the lifetime of favorites listing responses.
	Favorites int

	// FavoritesCount is the lifetime of favorites count responses.
	FavoritesCount int

	// Users is the lifetime of user listing responses.
	Users int

	// Default is the lifetime applied when no other rule matches.
	Default int
}

// Markers holds the literal path substrings used to classify a request into a
// resource group, both for TTL policy lookup and for group invalidation.
//
// Markers are matched by plain containment, so they must be chosen so that no
// marker is a substring of an unrelated resource's path. eg. a marker of
// "/user" would also match "/users" routes.
type Markers struct {
	Items      string
	Featured   string
	Categories string
	Favorites  string
	Count      string
	Users      string
}

// Config defines the construction options for a Cache. Zero-value fields fall
// back to the values returned by DefaultConfig.
type Config struct {
	TTL     TTLMinutes
	Markers Markers
}

// DefaultConfig returns a configuration with sensible defaults for a
// storefront-style backend.
func DefaultConfig() Config {
	return Config{
		TTL: TTLMinutes{
			Item:           30,
			ItemList:       30,
			Featured:       30,
			Categories:     5,
			Favorites:      5,
			FavoritesCount: 5,
			Users:          10,
			Default:        5,
		},
		Markers: Markers{
			Items:      "/products",
			Featured:   "/featured",
			Categories: "/categories",
			Favorites:  "/favorites",
			Count:      "/count",
			Users:      "/users",
		},
	}
}

// normalize fills any zero-value field from the defaults so callers can
// override a single TTL or marker without restating the rest.
func normalize(c *Config) Config {
	def := DefaultConfig()
	if c == nil {
		return def
	}

	out := *c
	fallbackInt(&out.TTL.Item, def.TTL.Item)
	fallbackInt(&out.TTL.ItemList, def.TTL.ItemList)
	fallbackInt(&out.TTL.Featured, def.TTL.Featured)
	fallbackInt(&out.TTL.Categories, def.TTL.Categories)
	fallbackInt(&out.TTL.Favorites, def.TTL.Favorites)
	fallbackInt(&out.TTL.FavoritesCount, def.TTL.FavoritesCount)
	fallbackInt(&out.TTL.Users, def.TTL.Users)
	fallbackInt(&out.TTL.Default, def.TTL.Default)

	fallbackString(&out.Markers.Items, def.Markers.Items)
	fallbackString(&out.Markers.Featured, def.Markers.Featured)
	fallbackString(&out.Markers.Categories, def.Markers.Categories)
	fallbackString(&out.Markers.Favorites, def.Markers.Favorites)
	fallbackString(&out.Markers.Count, def.Markers.Count)
	fallbackString(&out.Markers.Users, def.Markers.Users)

	return out
}

func fallbackInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func fallbackString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func minutes(m int) time.Duration {
	return time.Duration(m) * time.Minute
}
