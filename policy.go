package goapicache

import (
	"strings"
	"time"
)

// policy resolves a cache key to the effective lifetime for the entry being
// written. Rules are checked most specific first via literal substring tests
// on the path portion of the key.
type policy struct {
	markers Markers

	item           time.Duration
	itemList       time.Duration
	featured       time.Duration
	categories     time.Duration
	favorites      time.Duration
	favoritesCount time.Duration
	users          time.Duration
	fallback       time.Duration
}

func newPolicy(c Config) policy {
	return policy{
		markers:        c.Markers,
		item:           minutes(c.TTL.Item),
		itemList:       minutes(c.TTL.ItemList),
		featured:       minutes(c.TTL.Featured),
		categories:     minutes(c.TTL.Categories),
		favorites:      minutes(c.TTL.Favorites),
		favoritesCount: minutes(c.TTL.FavoritesCount),
		users:          minutes(c.TTL.Users),
		fallback:       minutes(c.TTL.Default),
	}
}

// resolve returns the TTL for a key. A keyless item path is treated as an
// item-detail fetch; a list fetched with zero parameters takes the same
// branch, which only matters if the two lifetimes are configured apart.
func (p policy) resolve(key string) time.Duration {
	path, _, hasQuery := strings.Cut(key, "?")
	m := p.markers

	switch {
	case strings.Contains(path, m.Featured):
		return p.featured
	case strings.Contains(path, m.Categories):
		return p.categories
	case strings.Contains(path, m.Items) && !hasQuery:
		return p.item
	case strings.Contains(path, m.Items):
		return p.itemList
	case strings.Contains(path, m.Favorites) && strings.Contains(path, m.Count):
		return p.favoritesCount
	case strings.Contains(path, m.Favorites):
		return p.favorites
	case strings.Contains(path, m.Users):
		return p.users
	default:
		return p.fallback
	}
}
