package query

import (
	"fmt"
	"strconv"
)

// Key identifies one cache entry. A key with neither ID nor Filter is the full list
// of a resource; ID selects one record; Filter selects a derived list such as a search.
type Key struct {
	Resource string
	ID       int64
	Filter   string
}

func ListKey(resource string) Key {
	return Key{Resource: resource}
}

func DetailKey(resource string, id int64) Key {
	return Key{Resource: resource, ID: id}
}

func SearchKey(resource, keyword string) Key {
	return Key{Resource: resource, Filter: "search=" + keyword}
}

func (k Key) IsList() bool {
	return k.ID == 0 && k.Filter == ""
}

func (k Key) IsDetail() bool {
	return k.ID != 0
}

// covers reports whether invalidating k must also invalidate other. Filtered lists
// are views over the full list, so invalidating a list covers them too.
func (k Key) covers(other Key) bool {
	if k == other {
		return true
	}
	return k.IsList() && other.Resource == k.Resource && other.Filter != ""
}

func (k Key) String() string {
	s := k.Resource
	if k.ID != 0 {
		s += "/" + strconv.FormatInt(k.ID, 10)
	}
	if k.Filter != "" {
		s += fmt.Sprintf("?%s", k.Filter)
	}
	return s
}
