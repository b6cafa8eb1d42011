package model

import "fmt"

// Kind selects one of the two item collections.
type Kind string

// Item kinds.
const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindLost, KindFound}

// Collection names in the remote store.
const (
	CollectionLost  = "lost_items"
	CollectionFound = "found_items"
)

// ParseKind maps a form discriminator onto a kind. "lost" selects the lost
// collection, anything else the found collection.
func ParseKind(s string) Kind {
	if s == string(KindLost) {
		return KindLost
	}
	return KindFound
}

// KindFromCollection returns the kind stored in the named collection.
func KindFromCollection(collection string) (Kind, error) {
	switch collection {
	case CollectionLost:
		return KindLost, nil
	case CollectionFound:
		return KindFound, nil
	default:
		return "", fmt.Errorf("unknown collection %q", collection)
	}
}

// Collection returns the name of the collection holding records of this kind.
func (k Kind) Collection() string {
	if k == KindLost {
		return CollectionLost
	}
	return CollectionFound
}

// Label returns the capitalised kind, as shown on cards.
func (k Kind) Label() string {
	if k == KindLost {
		return "Lost"
	}
	return "Found"
}

// DateColumn returns the date column populated for this kind.
func (k Kind) DateColumn() string {
	if k == KindLost {
		return "date_lost"
	}
	return "date_found"
}
