// Package companyapi reads and writes companies through the backend
package companyapi

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/companies"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/query"
)

const (
	ResourceName = "companies"
	// ImageField is the multipart field the backend reads the logo from
	ImageField = "image"
)

// ImageUpload is the input of UploadImage
type ImageUpload struct {
	CompanyID int64
	Filename  string
	Content   io.Reader
}

type Resource struct {
	client *api.Client
	cache  *query.Cache
	stale  query.StaleTimes

	create *query.Mutation[companies.CreateRequest, *companies.Company]
	update *query.Mutation[companies.UpdateInput, *companies.Company]
	remove *query.Mutation[int64, struct{}]
	image  *query.Mutation[ImageUpload, *companies.Company]
}

func NewResource(client *api.Client, cache *query.Cache, stale query.StaleTimes) *Resource {
	r := &Resource{client: client, cache: cache, stale: stale}
	notifier := client.Notifier()

	r.create = query.NewMutation(cache, notifier, query.MutationConfig[companies.CreateRequest, *companies.Company]{
		Run: func(ctx context.Context, in companies.CreateRequest) (*companies.Company, error) {
			var created companies.Company
			if err := client.Post(ctx, "/companies/create", in, &created, api.WithoutErrorToast()); err != nil {
				return nil, err
			}
			return &created, nil
		},
		Invalidates: func(companies.CreateRequest, *companies.Company) []query.Key {
			return []query.Key{query.ListKey(ResourceName)}
		},
		SuccessMessage: "Company created successfully",
	})

	r.update = query.NewMutation(cache, notifier, query.MutationConfig[companies.UpdateInput, *companies.Company]{
		Run: func(ctx context.Context, in companies.UpdateInput) (*companies.Company, error) {
			var updated companies.Company
			if err := client.Put(ctx, fmt.Sprintf("/companies/%d", in.ID), in.UpdateRequest, &updated, api.WithoutErrorToast()); err != nil {
				return nil, err
			}
			return &updated, nil
		},
		Invalidates:    func(in companies.UpdateInput, _ *companies.Company) []query.Key { return recordKeys(in.ID) },
		SuccessMessage: "Company updated successfully",
	})

	r.remove = query.NewMutation(cache, notifier, query.MutationConfig[int64, struct{}]{
		Run: func(ctx context.Context, id int64) (struct{}, error) {
			return struct{}{}, client.Delete(ctx, fmt.Sprintf("/companies/%d", id), nil, api.WithoutErrorToast())
		},
		Invalidates:    func(id int64, _ struct{}) []query.Key { return recordKeys(id) },
		SuccessMessage: "Company deleted successfully",
	})

	r.image = query.NewMutation(cache, notifier, query.MutationConfig[ImageUpload, *companies.Company]{
		Run: func(ctx context.Context, in ImageUpload) (*companies.Company, error) {
			var updated companies.Company
			body := api.NewFileUpload(ImageField, in.Filename, in.Content)
			if err := client.Put(ctx, fmt.Sprintf("/companies/%d/image", in.CompanyID), body, &updated, api.WithoutErrorToast()); err != nil {
				return nil, err
			}
			return &updated, nil
		},
		Invalidates:    func(in ImageUpload, _ *companies.Company) []query.Key { return recordKeys(in.CompanyID) },
		SuccessMessage: "Company image uploaded successfully",
	})

	return r
}

func recordKeys(id int64) []query.Key {
	return []query.Key{query.ListKey(ResourceName), query.DetailKey(ResourceName, id)}
}

func (r *Resource) List(ctx context.Context) ([]companies.Company, error) {
	return query.FetchAs(ctx, r.cache, query.ListKey(ResourceName), r.stale.List, func(ctx context.Context) ([]companies.Company, error) {
		var list []companies.Company
		if err := r.client.Get(ctx, "/companies/all", &list); err != nil {
			return nil, err
		}
		return list, nil
	})
}

// Get is disabled for id 0 and returns ErrQueryDisabled without a request
func (r *Resource) Get(ctx context.Context, id int64) (*companies.Company, error) {
	if id == 0 {
		return nil, inverrors.ErrQueryDisabled
	}
	return query.FetchAs(ctx, r.cache, query.DetailKey(ResourceName, id), r.stale.Detail, func(ctx context.Context) (*companies.Company, error) {
		var company companies.Company
		if err := r.client.Get(ctx, fmt.Sprintf("/companies/%d", id), &company); err != nil {
			return nil, err
		}
		return &company, nil
	})
}

func (r *Resource) Create(ctx context.Context, req companies.CreateRequest) (*companies.Company, error) {
	return r.create.Mutate(ctx, req)
}

func (r *Resource) Update(ctx context.Context, in companies.UpdateInput) (*companies.Company, error) {
	return r.update.Mutate(ctx, in)
}

func (r *Resource) Delete(ctx context.Context, id int64) error {
	_, err := r.remove.Mutate(ctx, id)
	return err
}

// UploadImage sends the logo as multipart/form-data in the "image" field
func (r *Resource) UploadImage(ctx context.Context, in ImageUpload) (*companies.Company, error) {
	return r.image.Mutate(ctx, in)
}

// Pending is the number of writes in flight
func (r *Resource) Pending() int {
	return r.create.Pending() + r.update.Pending() + r.remove.Pending() + r.image.Pending()
}
