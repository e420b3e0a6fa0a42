package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/jrsteele09/go-inventory-ui/session"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server   *httptest.Server
	store    *session.PersistentStore
	notices  *notify.Recorder
	events   []api.UnauthorizedEvent
	client   *api.Client
	registry *prometheus.Registry
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	f := &fixture{
		server:   httptest.NewServer(handler),
		store:    session.NewMemoryStore(),
		notices:  notify.NewRecorder(),
		registry: prometheus.NewRegistry(),
	}
	t.Cleanup(f.server.Close)
	f.client = api.New(api.Config{BaseURL: f.server.URL + "/api/"}, f.store,
		api.WithNotifier(f.notices),
		api.WithMetrics(api.NewMetrics(f.registry)),
		api.WithUnauthorizedHandler(api.UnauthorizedHandlerFunc(func(evt api.UnauthorizedEvent) {
			f.events = append(f.events, evt)
		})),
	)
	return f
}

func (f *fixture) login(t *testing.T, token string) {
	t.Helper()
	require.NoError(t, f.store.SetSession(users.UserProfile{UserID: 1, Username: "ada", Roles: users.Roles{users.RoleAdmin}}, token, "refresh"))
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath, gotAccept, gotRequestID string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotRequestID = r.Header.Get(api.RequestIDHeader)
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `[{"userId":1,"username":"ada"}]`)
	})
	f.login(t, "abc")

	var list []users.User
	require.NoError(t, f.client.Get(context.Background(), "/users/all", &list))

	require.Equal(t, "Bearer abc", gotAuth)
	require.Equal(t, "/api/users/all", gotPath)
	require.Equal(t, "application/json", gotAccept)
	require.NotEmpty(t, gotRequestID)
	require.Len(t, list, 1)
	require.Equal(t, "ada", list[0].Username)
	require.Empty(t, f.notices.Notices())
}

func TestClient_SkipAuthAndAnonymous(t *testing.T) {
	var gotAuth []string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{}`)
	})

	require.NoError(t, f.client.Get(context.Background(), "/auth/user", nil))
	f.login(t, "abc")
	require.NoError(t, f.client.Post(context.Background(), "/auth/signin", map[string]string{"username": "ada"}, nil, api.SkipAuth()))

	require.Equal(t, []string{"", ""}, gotAuth)
}

func TestClient_JSONBody(t *testing.T) {
	var gotType, gotBody string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"userId":9}`)
	})
	f.login(t, "abc")

	var created users.User
	err := f.client.Post(context.Background(), "/users/create", users.CreateRequest{Username: "bob"}, &created, api.WithSuccessToast("User created"))
	require.NoError(t, err)
	require.Equal(t, "application/json", gotType)
	require.Contains(t, gotBody, `"username":"bob"`)
	require.Equal(t, int64(9), created.UserID)
	require.Equal(t, []notify.Notice{{Level: notify.LevelSuccess, Category: notify.CategoryGeneral, Message: "User created"}}, f.notices.Notices())
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			})
			f.login(t, "abc")

			err := f.client.Get(context.Background(), "/users/all", nil)
			require.Error(t, err)
			require.True(t, api.IsUnauthorized(err))
			require.Equal(t, status, api.StatusOf(err))

			require.Equal(t, session.Session{}, f.store.Snapshot())
			require.Equal(t, []api.UnauthorizedEvent{{Status: status, Endpoint: "/users/all"}}, f.events)
			require.Equal(t, []notify.Notice{{Level: notify.LevelWarning, Category: notify.CategorySession, Message: api.SessionExpiredMessage}}, f.notices.Notices())
		})
	}
}

func TestClient_UnauthorizedWithoutToast(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	f.login(t, "abc")

	err := f.client.Get(context.Background(), "/auth/user", nil, api.WithoutErrorToast())
	require.True(t, api.IsUnauthorized(err))
	require.Empty(t, f.notices.Notices())
	require.Len(t, f.events, 1)
	require.False(t, f.store.IsAuthenticated())
}

func TestClient_NoContentDelete(t *testing.T) {
	var gotMethod string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})
	f.login(t, "abc")

	resp, err := f.client.Do(context.Background(), http.MethodDelete, "/users/7", nil, api.WithSuccessToast("User deleted"))
	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, http.StatusNoContent, resp.Status)
	require.JSONEq(t, `{}`, string(resp.Body))

	var out map[string]any
	require.NoError(t, resp.Decode(&out))
	require.Empty(t, out)
	require.Equal(t, []notify.Notice{{Level: notify.LevelSuccess, Category: notify.CategoryGeneral, Message: "User deleted"}}, f.notices.Notices())
}

func TestClient_EmptySuccessBody(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp, err := f.client.Do(context.Background(), http.MethodPut, "/users/update-lock-status", nil, api.SkipAuth())
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(resp.Body))
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	notices := notify.NewRecorder()
	client := api.New(api.Config{BaseURL: baseURL}, session.NewMemoryStore(), api.WithNotifier(notices))

	err := client.Get(context.Background(), "/users/all", nil)
	require.Error(t, err)
	require.True(t, api.IsNetwork(err))
	require.Equal(t, 0, api.StatusOf(err))
	require.Contains(t, err.Error(), "connection problem")
	require.NotContains(t, err.Error(), "Error ")

	got := notices.Notices()
	require.Len(t, got, 1)
	require.Equal(t, notify.CategoryConnection, got[0].Category)
	require.Equal(t, api.ConnectionProblemMessage, got[0].Message)
}

func TestClient_ContextCancelled(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.client.Get(ctx, "/users/all", nil)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, api.IsNetwork(err))
	require.Empty(t, f.notices.Notices())
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		check    func(t *testing.T, err error)
		category notify.Category
	}{
		{
			name:   "validation errors map",
			status: http.StatusBadRequest,
			body:   `{"message":"Validation failed","errors":{"email":"must be a valid email","username":["is taken"]}}`,
			check: func(t *testing.T, err error) {
				var vErr *api.ValidationError
				require.ErrorAs(t, err, &vErr)
				require.Equal(t, "Validation failed", vErr.Message)
				require.Equal(t, map[string]string{"email": "must be a valid email", "username": "is taken"}, vErr.Fields)
				require.Equal(t, "email: must be a valid email; username: is taken", vErr.Summary())
			},
			category: notify.CategoryValidation,
		},
		{
			name:   "message field",
			status: http.StatusConflict,
			body:   `{"message":"Company name already exists"}`,
			check: func(t *testing.T, err error) {
				var hErr *api.HTTPError
				require.ErrorAs(t, err, &hErr)
				require.Equal(t, "Company name already exists", hErr.Message)
			},
			category: notify.CategoryGeneral,
		},
		{
			name:   "details field",
			status: http.StatusBadRequest,
			body:   `{"details":["bad id"]}`,
			check: func(t *testing.T, err error) {
				require.EqualError(t, err, "bad id")
			},
			category: notify.CategoryGeneral,
		},
		{
			name:   "plain text",
			status: http.StatusInternalServerError,
			body:   "  database is down \n",
			check: func(t *testing.T, err error) {
				require.EqualError(t, err, "database is down")
			},
			category: notify.CategoryGeneral,
		},
		{
			name:   "generic fallback",
			status: http.StatusBadGateway,
			body:   "",
			check: func(t *testing.T, err error) {
				require.EqualError(t, err, "Error 502")
			},
			category: notify.CategoryGeneral,
		},
		{
			name:   "server side errors map is not validation",
			status: http.StatusInternalServerError,
			body:   `{"errors":{"db":"timeout"}}`,
			check: func(t *testing.T, err error) {
				require.False(t, api.IsValidation(err))
				require.EqualError(t, err, "Error 500")
			},
			category: notify.CategoryGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			err := f.client.Post(context.Background(), "/users/create", map[string]string{}, nil)
			require.Error(t, err)
			require.Equal(t, tt.status, api.StatusOf(err))
			require.False(t, api.IsUnauthorized(err))
			tt.check(t, err)

			got := f.notices.Notices()
			require.Len(t, got, 1)
			require.Equal(t, notify.LevelError, got[0].Level)
			require.Equal(t, tt.category, got[0].Category)
		})
	}
}

func TestClient_ParseError(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>gateway</html>")
	})

	err := f.client.Get(context.Background(), "/companies/all", nil, api.WithoutErrorToast())
	var pErr *api.ParseError
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, "<html>gateway</html>", pErr.Raw)
	require.EqualError(t, err, api.InvalidResponseMessage)
	require.Empty(t, f.notices.Notices())
}

func TestClient_Multipart(t *testing.T) {
	var gotType, gotFile, gotName, gotField string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotFile = string(data)
		gotName = header.Filename
		gotField = r.FormValue("caption")
		_, _ = io.WriteString(w, `{"id":3,"image":"/img/3.png"}`)
	})
	f.login(t, "abc")

	body := api.NewFileUpload("image", "logo.png", strings.NewReader("PNGDATA"))
	body.Fields = map[string]string{"caption": "logo"}
	require.NoError(t, f.client.Put(context.Background(), "/companies/3/image", body, nil))

	require.True(t, strings.HasPrefix(gotType, "multipart/form-data; boundary="), gotType)
	require.Equal(t, "PNGDATA", gotFile)
	require.Equal(t, "logo.png", gotName)
	require.Equal(t, "logo", gotField)
}

func TestClient_RawReaderBody(t *testing.T) {
	var gotType, gotBody string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, f.client.Post(context.Background(), "/raw", strings.NewReader("opaque"), nil))
	require.Empty(t, gotType)
	require.Equal(t, "opaque", gotBody)
}

func TestClient_Metrics(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	})

	require.NoError(t, f.client.Get(context.Background(), "/ok", nil))
	require.NoError(t, f.client.Get(context.Background(), "/ok", nil))
	require.Error(t, f.client.Get(context.Background(), "/missing", nil, api.WithoutErrorToast()))

	again := api.NewMetrics(f.registry)
	require.NotNil(t, again)

	count, err := testutil.GatherAndCount(f.registry, "inventory_api_requests_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
