// Package userapi reads and writes user records through the backend with cache
// coherence: every successful write invalidates the list and, when the record is
// known, its detail entry.
package userapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-inventory-ui/api"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/query"
	"github.com/jrsteele09/go-inventory-ui/users"
)

const ResourceName = "users"

type Resource struct {
	client *api.Client
	cache  *query.Cache
	stale  query.StaleTimes

	create        *query.Mutation[users.CreateRequest, *users.User]
	update        *query.Mutation[users.UpdateInput, *users.User]
	remove        *query.Mutation[int64, struct{}]
	role          *query.Mutation[users.RoleUpdate, struct{}]
	lockStatus    *query.Mutation[users.LockStatusUpdate, struct{}]
	enabledStatus *query.Mutation[users.EnabledStatusUpdate, struct{}]
	roles         *query.Mutation[users.RolesUpdate, struct{}]
}

func NewResource(client *api.Client, cache *query.Cache, stale query.StaleTimes) *Resource {
	r := &Resource{client: client, cache: cache, stale: stale}
	notifier := client.Notifier()

	r.create = query.NewMutation(cache, notifier, query.MutationConfig[users.CreateRequest, *users.User]{
		Run: func(ctx context.Context, in users.CreateRequest) (*users.User, error) {
			var created users.User
			if err := client.Post(ctx, "/users/create", in, &created, api.WithoutErrorToast()); err != nil {
				return nil, err
			}
			return &created, nil
		},
		Invalidates: func(_ users.CreateRequest, created *users.User) []query.Key {
			keys := []query.Key{query.ListKey(ResourceName)}
			if created != nil && created.UserID != 0 {
				keys = append(keys, query.DetailKey(ResourceName, created.UserID))
			}
			return keys
		},
		SuccessMessage: "User created successfully",
	})

	r.update = query.NewMutation(cache, notifier, query.MutationConfig[users.UpdateInput, *users.User]{
		Run: func(ctx context.Context, in users.UpdateInput) (*users.User, error) {
			var updated users.User
			if err := client.Put(ctx, fmt.Sprintf("/users/update/%d", in.UserID), in.UpdateRequest, &updated, api.WithoutErrorToast()); err != nil {
				return nil, err
			}
			return &updated, nil
		},
		Invalidates: func(in users.UpdateInput, _ *users.User) []query.Key {
			return recordKeys(in.UserID)
		},
		SuccessMessage: "User updated successfully",
	})

	r.remove = query.NewMutation(cache, notifier, query.MutationConfig[int64, struct{}]{
		Run: func(ctx context.Context, id int64) (struct{}, error) {
			return struct{}{}, client.Delete(ctx, fmt.Sprintf("/users/%d", id), nil, api.WithoutErrorToast())
		},
		Invalidates:    func(id int64, _ struct{}) []query.Key { return recordKeys(id) },
		SuccessMessage: "User deleted successfully",
	})

	r.role = query.NewMutation(cache, notifier, query.MutationConfig[users.RoleUpdate, struct{}]{
		Run: func(ctx context.Context, in users.RoleUpdate) (struct{}, error) {
			return struct{}{}, client.Put(ctx, "/users/update/role", in, nil, api.WithoutErrorToast())
		},
		Invalidates:    func(in users.RoleUpdate, _ struct{}) []query.Key { return recordKeys(in.UserID) },
		SuccessMessage: "User role updated successfully",
	})

	r.lockStatus = query.NewMutation(cache, notifier, query.MutationConfig[users.LockStatusUpdate, struct{}]{
		Run: func(ctx context.Context, in users.LockStatusUpdate) (struct{}, error) {
			return struct{}{}, client.Put(ctx, "/users/update-lock-status", in, nil, api.WithoutErrorToast())
		},
		Invalidates: func(in users.LockStatusUpdate, _ struct{}) []query.Key { return recordKeys(in.UserID) },
		Describe: func(in users.LockStatusUpdate, _ struct{}) string {
			if in.Lock {
				return "User locked successfully"
			}
			return "User unlocked successfully"
		},
	})

	r.enabledStatus = query.NewMutation(cache, notifier, query.MutationConfig[users.EnabledStatusUpdate, struct{}]{
		Run: func(ctx context.Context, in users.EnabledStatusUpdate) (struct{}, error) {
			return struct{}{}, client.Put(ctx, "/users/update-enabled-status", in, nil, api.WithoutErrorToast())
		},
		Invalidates: func(in users.EnabledStatusUpdate, _ struct{}) []query.Key { return recordKeys(in.UserID) },
		Describe: func(in users.EnabledStatusUpdate, _ struct{}) string {
			if in.Enabled {
				return "User enabled successfully"
			}
			return "User disabled successfully"
		},
	})

	r.roles = query.NewMutation(cache, notifier, query.MutationConfig[users.RolesUpdate, struct{}]{
		Run: func(ctx context.Context, in users.RolesUpdate) (struct{}, error) {
			in.Roles = users.NormalizeRoles(in.Roles)
			return struct{}{}, client.Put(ctx, "/users/roles", in, nil, api.WithoutErrorToast())
		},
		Invalidates:    func(in users.RolesUpdate, _ struct{}) []query.Key { return recordKeys(in.UserID) },
		SuccessMessage: "User roles updated successfully",
	})

	return r
}

func recordKeys(id int64) []query.Key {
	return []query.Key{query.ListKey(ResourceName), query.DetailKey(ResourceName, id)}
}

func (r *Resource) List(ctx context.Context) ([]users.User, error) {
	return query.FetchAs(ctx, r.cache, query.ListKey(ResourceName), r.stale.List, func(ctx context.Context) ([]users.User, error) {
		var list []users.User
		if err := r.client.Get(ctx, "/users/all", &list); err != nil {
			return nil, err
		}
		return list, nil
	})
}

// Get is disabled for id 0 and returns ErrQueryDisabled without a request
func (r *Resource) Get(ctx context.Context, id int64) (*users.User, error) {
	if id == 0 {
		return nil, inverrors.ErrQueryDisabled
	}
	return query.FetchAs(ctx, r.cache, query.DetailKey(ResourceName, id), r.stale.Detail, func(ctx context.Context) (*users.User, error) {
		var user users.User
		if err := r.client.Get(ctx, fmt.Sprintf("/users/%d", id), &user); err != nil {
			return nil, err
		}
		return &user, nil
	})
}

// Search is disabled for an empty keyword and returns nil without a request
func (r *Resource) Search(ctx context.Context, keyword string) ([]users.User, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	return query.FetchAs(ctx, r.cache, query.SearchKey(ResourceName, keyword), r.stale.Search, func(ctx context.Context) ([]users.User, error) {
		var list []users.User
		if err := r.client.Get(ctx, "/users/search?keyword="+url.QueryEscape(keyword), &list); err != nil {
			return nil, err
		}
		return list, nil
	})
}

func (r *Resource) Create(ctx context.Context, req users.CreateRequest) (*users.User, error) {
	return r.create.Mutate(ctx, req)
}

func (r *Resource) Update(ctx context.Context, in users.UpdateInput) (*users.User, error) {
	return r.update.Mutate(ctx, in)
}

func (r *Resource) Delete(ctx context.Context, id int64) error {
	_, err := r.remove.Mutate(ctx, id)
	return err
}

func (r *Resource) UpdateRole(ctx context.Context, in users.RoleUpdate) error {
	_, err := r.role.Mutate(ctx, in)
	return err
}

func (r *Resource) UpdateLockStatus(ctx context.Context, in users.LockStatusUpdate) error {
	_, err := r.lockStatus.Mutate(ctx, in)
	return err
}

func (r *Resource) UpdateEnabledStatus(ctx context.Context, in users.EnabledStatusUpdate) error {
	_, err := r.enabledStatus.Mutate(ctx, in)
	return err
}

func (r *Resource) UpdateRoles(ctx context.Context, in users.RolesUpdate) error {
	_, err := r.roles.Mutate(ctx, in)
	return err
}

// GoUpdateLockStatus runs a lock toggle in the background so several rows can be
// toggled at once, each with its own pending state.
func (r *Resource) GoUpdateLockStatus(ctx context.Context, in users.LockStatusUpdate) *query.Call[struct{}] {
	return r.lockStatus.Go(ctx, in)
}

// Pending is the number of writes in flight
func (r *Resource) Pending() int {
	return r.create.Pending() + r.update.Pending() + r.remove.Pending() + r.role.Pending() +
		r.lockStatus.Pending() + r.enabledStatus.Pending() + r.roles.Pending()
}
