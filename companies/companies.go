// Package companies models the companies users belong to
package companies

import "strings"

type Company struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Initials are shown in place of a missing logo
func (c *Company) Initials() string {
	var initials []rune
	for _, word := range strings.Fields(c.Name) {
		initials = append(initials, []rune(word)[0])
		if len(initials) == 2 {
			break
		}
	}
	return strings.ToUpper(string(initials))
}

type CreateRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
}

type UpdateRequest CreateRequest

// UpdateInput pairs an update with the company it targets
type UpdateInput struct {
	ID int64
	UpdateRequest
}
