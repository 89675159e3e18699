package querycache

import "strings"

const detailPrefix = "id:"

// Key identifies one cached view. Scope is empty for the plain list, "id:<id>"
// for a record, and "<filter>:<value>" for filtered lists.
type Key struct {
	Entity string
	OrgID  string
	Scope  string
}

// ListKey is the key of an organization's full list of entity
func ListKey(entity, orgID string) Key {
	return Key{Entity: entity, OrgID: orgID}
}

// DetailKey is the key of a single record
func DetailKey(entity, orgID, id string) Key {
	return Key{Entity: entity, OrgID: orgID, Scope: detailPrefix + id}
}

// FilterKey is the key of a filtered list, e.g. FilterKey("tasks", org, "status", "DONE")
func FilterKey(entity, orgID, filter, value string) Key {
	return Key{Entity: entity, OrgID: orgID, Scope: filter + ":" + value}
}

// IsDetail reports whether k addresses a single record
func (k Key) IsDetail() bool {
	return strings.HasPrefix(k.Scope, detailPrefix)
}

// ID returns the record ID of a detail key
func (k Key) ID() string {
	if !k.IsDetail() {
		return ""
	}
	return strings.TrimPrefix(k.Scope, detailPrefix)
}

func (k Key) String() string {
	if k.Scope == "" {
		return k.Entity + "/" + k.OrgID
	}
	return k.Entity + "/" + k.OrgID + "/" + k.Scope
}
