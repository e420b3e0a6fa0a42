package users

// User is the backend's user record as listed on the admin screens
type User struct {
	UserID           int64  `json:"userId"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Roles            Roles  `json:"roles"`
	AccountNonLocked bool   `json:"accountNonLocked"`
	Enabled          bool   `json:"enabled"`
	CompanyID        *int64 `json:"companyId,omitempty"`
	Image            string `json:"image,omitempty"`
}

func (u *User) Locked() bool {
	return !u.AccountNonLocked
}

type CreateRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles,omitempty"`
	CompanyID *int64   `json:"companyId,omitempty"`
}

type UpdateRequest struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	CompanyID *int64 `json:"companyId,omitempty"`
}

// UpdateInput pairs an update with the record it targets
type UpdateInput struct {
	UserID int64
	UpdateRequest
}

type RoleUpdate struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

type LockStatusUpdate struct {
	UserID int64 `json:"userId"`
	Lock   bool  `json:"lock"`
}

type EnabledStatusUpdate struct {
	UserID  int64 `json:"userId"`
	Enabled bool  `json:"enabled"`
}

type RolesUpdate struct {
	UserID int64    `json:"userId"`
	Roles  []string `json:"roles"`
}
