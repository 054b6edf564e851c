package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/groups"
	"github.com/emberhollow/hearth/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGroupsService struct {
	group   *domain.Group
	list    []domain.Group
	created []domain.Group
	err     error
}

func (f *fakeGroupsService) CreateGroup(_ context.Context, _ string, _ groups.GroupInput) (*domain.Group, error) {
	return f.group, f.err
}

func (f *fakeGroupsService) UpdateGroup(_ context.Context, _ string, _ string, _ groups.GroupInput) (*domain.Group, error) {
	return f.group, f.err
}

func (f *fakeGroupsService) GetGroup(_ context.Context, _ string) (*domain.Group, error) {
	return f.group, f.err
}

func (f *fakeGroupsService) ListGroups(_ context.Context) ([]domain.Group, error) {
	return f.list, f.err
}

func (f *fakeGroupsService) CreateMissing(_ context.Context, _ string) ([]domain.Group, error) {
	return f.created, f.err
}

func groupsRouter(svc groups.Service, mws ...func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()
	for _, mw := range mws {
		router.Use(mw)
	}
	newGroupsHandler(encoder{}, svc).Routes(router)
	return router
}

func TestGroupsHandler_List(t *testing.T) {
	svc := &fakeGroupsService{list: []domain.Group{
		{ID: "g-1", Name: "Announcements"},
		{ID: "g-2", Name: "General Discussion"},
	}}
	router := groupsRouter(svc)

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var list []domain.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Announcements", list[0].Name)
}

func TestGroupsHandler_Get(t *testing.T) {
	svc := &fakeGroupsService{group: &domain.Group{ID: "g-1", Name: "Announcements"}}
	router := groupsRouter(svc)

	req := httptest.NewRequest("GET", "/g-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var group domain.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &group))
	assert.Equal(t, "g-1", group.ID)
}

func TestGroupsHandler_Get_NotFound(t *testing.T) {
	router := groupsRouter(&fakeGroupsService{})

	req := httptest.NewRequest("GET", "/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGroupsHandler_Store_Created(t *testing.T) {
	svc := &fakeGroupsService{group: &domain.Group{ID: "g-1", Name: "Announcements", IsActive: true}}
	router := groupsRouter(svc, asUser("admin-1"))

	body := `{"name":"Announcements","description":"Official announcements"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var group domain.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &group))
	assert.Equal(t, "g-1", group.ID)
}

func TestGroupsHandler_Store_InvalidBody(t *testing.T) {
	router := groupsRouter(&fakeGroupsService{}, asUser("admin-1"))

	req := httptest.NewRequest("POST", "/", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGroupsHandler_Store_NoUserInContext(t *testing.T) {
	router := groupsRouter(&fakeGroupsService{})

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"X"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGroupsHandler_Store_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"permission denied", &groups.PermissionDeniedError{Reason: "Only administrators can manage groups."}, http.StatusForbidden},
		{"validation failure", &groups.ValidationError{Err: errors.New("name is required")}, http.StatusBadRequest},
		{"duplicate name", groups.ErrGroupExists, http.StatusConflict},
		{"storage failure", errors.New("store unreachable"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := groupsRouter(&fakeGroupsService{err: tt.err}, asUser("admin-1"))

			req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Announcements"}`))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.err.Error(), resp.Message)
		})
	}
}

func TestGroupsHandler_Update(t *testing.T) {
	svc := &fakeGroupsService{group: &domain.Group{ID: "g-1", Name: "Renamed"}}
	router := groupsRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("PUT", "/g-1", strings.NewReader(`{"name":"Renamed"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var group domain.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &group))
	assert.Equal(t, "Renamed", group.Name)
}

func TestGroupsHandler_CreateMissing(t *testing.T) {
	svc := &fakeGroupsService{created: []domain.Group{{ID: "g-1", Name: "Announcements"}}}
	router := groupsRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("POST", "/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var created []domain.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Len(t, created, 1)
}
