package companyapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/companies"
	"github.com/jrsteele09/go-inventory-ui/companies/companyapi"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/internal/fakebackend"
	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/jrsteele09/go-inventory-ui/query"
	"github.com/jrsteele09/go-inventory-ui/session"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	backend  *fakebackend.Backend
	cache    *query.Cache
	notices  *notify.Recorder
	resource *companyapi.Resource
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	backend := fakebackend.NewSeeded("secret")
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	accessToken, err := backend.IssueToken("manager")
	require.NoError(t, err)
	store := session.NewMemoryStore()
	require.NoError(t, store.SetSession(users.UserProfile{Username: "manager"}, accessToken, ""))

	notices := notify.NewRecorder()
	client := api.New(api.Config{BaseURL: server.URL}, store, api.WithNotifier(notices))
	cache := query.NewCache()
	return &testFixture{
		backend:  backend,
		cache:    cache,
		notices:  notices,
		resource: companyapi.NewResource(client, cache, query.DefaultStaleTimes()),
	}
}

func TestResource_ListAndGet(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	list, err := f.resource.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Acme Supplies", list[0].Name)

	company, err := f.resource.Get(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "GS", company.Initials())

	_, err = f.resource.Get(ctx, 0)
	require.ErrorIs(t, err, inverrors.ErrQueryDisabled)

	_, err = f.resource.Get(ctx, 99)
	require.Equal(t, http.StatusNotFound, api.StatusOf(err))
}

func TestResource_UploadImage(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.resource.Get(ctx, 1)
	require.NoError(t, err)

	updated, err := f.resource.UploadImage(ctx, companyapi.ImageUpload{
		CompanyID: 1,
		Filename:  "logo.png",
		Content:   strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	require.Equal(t, "/images/companies/logo.png", updated.Image)
	require.Equal(t, []byte("png-bytes"), f.backend.Image(1))
	require.True(t, f.cache.State(query.DetailKey(companyapi.ResourceName, 1)).Invalidated)

	var upload fakebackend.Request
	for _, r := range f.backend.Requests() {
		if r.Path == "/companies/1/image" {
			upload = r
		}
	}
	require.True(t, strings.HasPrefix(upload.ContentType, "multipart/form-data; boundary="))

	notices := f.notices.Notices()
	require.Equal(t, "Company image uploaded successfully", notices[len(notices)-1].Message)
}

func TestResource_CreateUpdateDelete(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.resource.List(ctx)
	require.NoError(t, err)

	created, err := f.resource.Create(ctx, companies.CreateRequest{Name: "Initech", Email: "info@initech.example"})
	require.NoError(t, err)
	require.Equal(t, int64(3), created.ID)
	require.True(t, f.cache.State(query.ListKey(companyapi.ResourceName)).Invalidated)

	list, err := f.resource.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	updated, err := f.resource.Update(ctx, companies.UpdateInput{ID: created.ID, UpdateRequest: companies.UpdateRequest{Name: "Initech Ltd"}})
	require.NoError(t, err)
	require.Equal(t, "Initech Ltd", updated.Name)

	require.NoError(t, f.resource.Delete(ctx, created.ID))
	_, ok := f.backend.Company(created.ID)
	require.False(t, ok)
	require.Equal(t, 0, f.resource.Pending())
}

func TestResource_CreateRequiresName(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.resource.Create(context.Background(), companies.CreateRequest{})
	require.True(t, api.IsValidation(err))

	notices := f.notices.Notices()
	require.Len(t, notices, 1)
	require.Equal(t, "name: is required", notices[0].Message)
}
