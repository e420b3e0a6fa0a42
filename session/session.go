// Package session holds who is logged in on this client. It is the only piece of
// shared mutable client state; every write goes through Store.
package session

import (
	"encoding/json"
	"slices"

	"github.com/jrsteele09/go-inventory-ui/users"
)

// StorageName is the name of the single persisted entry holding the session
const StorageName = "auth-storage"

// Session is authenticated iff both User and AccessToken are set
type Session struct {
	User         *users.UserProfile
	AccessToken  string
	RefreshToken string
}

func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// Clone returns a deep copy so callers never share the user pointer with the store
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		u.Roles = append(users.Roles(nil), s.User.Roles...)
		s.User = &u
	}
	return s
}

// Equal compares two sessions field by field
func (s Session) Equal(other Session) bool {
	if s.AccessToken != other.AccessToken || s.RefreshToken != other.RefreshToken {
		return false
	}
	if (s.User == nil) != (other.User == nil) {
		return false
	}
	if s.User == nil {
		return true
	}
	a, b := s.User, other.User
	return a.UserID == b.UserID &&
		a.Username == b.Username &&
		a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.Email == b.Email &&
		a.Image == b.Image &&
		slices.Equal(a.Roles, b.Roles)
}

// persisted is the serialized form; empty tokens are written as null
type persisted struct {
	User         *users.UserProfile `json:"user"`
	AccessToken  *string            `json:"accessToken"`
	RefreshToken *string            `json:"refreshToken"`
}

func (s Session) MarshalJSON() ([]byte, error) {
	p := persisted{User: s.User}
	if s.AccessToken != "" {
		p.AccessToken = &s.AccessToken
	}
	if s.RefreshToken != "" {
		p.RefreshToken = &s.RefreshToken
	}
	return json.Marshal(p)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Session{User: p.User}
	if p.AccessToken != nil {
		s.AccessToken = *p.AccessToken
	}
	if p.RefreshToken != nil {
		s.RefreshToken = *p.RefreshToken
	}
	return nil
}

// sanitize restores the store invariants on a session read from storage: roles are
// normalized, and a half-populated session (user without token or the reverse) is
// dropped entirely.
func sanitize(s Session) Session {
	if s.User == nil || s.AccessToken == "" {
		return Session{}
	}
	u := s.User.Normalized()
	s.User = &u
	return s
}
