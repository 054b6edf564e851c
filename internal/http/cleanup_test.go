package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emberhollow/hearth/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleanupService struct {
	postsResult     domain.CleanupResult
	groupsResult    domain.CleanupResult
	completeResult  domain.CompleteCleanupResult
	integrityResult *domain.IntegrityValidationResult
	integrityErr    error
	status          *domain.CleanupStatus
	statusErr       error
}

func (f *fakeCleanupService) ClearAllPosts(_ context.Context, _ string) domain.CleanupResult {
	return f.postsResult
}

func (f *fakeCleanupService) ClearAllGroups(_ context.Context, _ string) domain.CleanupResult {
	return f.groupsResult
}

func (f *fakeCleanupService) PerformCompleteCleanup(_ context.Context, _ string) domain.CompleteCleanupResult {
	return f.completeResult
}

func (f *fakeCleanupService) ValidateDataIntegrity(_ context.Context) (*domain.IntegrityValidationResult, error) {
	return f.integrityResult, f.integrityErr
}

func (f *fakeCleanupService) GetCleanupStatus(_ context.Context) (*domain.CleanupStatus, error) {
	return f.status, f.statusErr
}

// asUser simulates the auth middleware by planting a user in the context.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), UserContextKey, &domain.User{ID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func cleanupRouter(svc cleanupService, mws ...func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()
	for _, mw := range mws {
		router.Use(mw)
	}
	newCleanupHandler(encoder{}, svc).Routes(router)
	return router
}

func TestCleanupHandler_ClearPosts_Success(t *testing.T) {
	svc := &fakeCleanupService{
		postsResult: domain.CleanupResult{Success: true, DeletedCount: 12, Message: "Successfully deleted 12 posts"},
	}
	router := cleanupRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("POST", "/posts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result domain.CleanupResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, int64(12), result.DeletedCount)
}

func TestCleanupHandler_ClearPosts_PermissionDenied(t *testing.T) {
	svc := &fakeCleanupService{
		postsResult: domain.CleanupResult{Success: false, Message: "Permission denied: Only administrators can manage groups.", Outcome: domain.CleanupOutcomeDenied},
	}
	router := cleanupRouter(svc, asUser("member-1"))

	req := httptest.NewRequest("POST", "/posts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)

	var result domain.CleanupResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, int64(0), result.DeletedCount)
}

func TestCleanupHandler_ClearGroups_LockConflict(t *testing.T) {
	svc := &fakeCleanupService{
		groupsResult: domain.CleanupResult{Success: false, Message: "Another groups cleanup is already running", Outcome: domain.CleanupOutcomeConflict},
	}
	router := cleanupRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("POST", "/groups", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCleanupHandler_ClearPosts_StorageFailure(t *testing.T) {
	svc := &fakeCleanupService{
		postsResult: domain.CleanupResult{Success: false, Message: "Failed to delete posts due to a storage error", Outcome: domain.CleanupOutcomeFailed},
	}
	router := cleanupRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("POST", "/posts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestResultStatus_MappedFromOutcomeNotMessage(t *testing.T) {
	// the message is display text; rewording it must never change the
	// status the handler picks
	tests := []struct {
		name     string
		result   domain.CleanupResult
		expected int
	}{
		{
			name:     "success",
			result:   domain.CleanupResult{Success: true, Message: "all gone", Outcome: domain.CleanupOutcomeOK},
			expected: http.StatusOK,
		},
		{
			name:     "denied with reworded message",
			result:   domain.CleanupResult{Success: false, Message: "you shall not pass", Outcome: domain.CleanupOutcomeDenied},
			expected: http.StatusForbidden,
		},
		{
			name:     "conflict with reworded message",
			result:   domain.CleanupResult{Success: false, Message: "try again later", Outcome: domain.CleanupOutcomeConflict},
			expected: http.StatusConflict,
		},
		{
			name:     "failure whose message mentions permissions",
			result:   domain.CleanupResult{Success: false, Message: "Permission denied lookup crashed", Outcome: domain.CleanupOutcomeFailed},
			expected: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, resultStatus(tc.result))
		})
	}
}

func TestCleanupHandler_ClearPosts_NoUserInContext(t *testing.T) {
	router := cleanupRouter(&fakeCleanupService{})

	req := httptest.NewRequest("POST", "/posts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCleanupHandler_Complete_Success(t *testing.T) {
	svc := &fakeCleanupService{
		completeResult: domain.CompleteCleanupResult{
			OverallSuccess: true,
			PostsCleanup:   domain.CleanupResult{Success: true, DeletedCount: 3, Message: "Successfully deleted 3 posts"},
			GroupsCleanup:  domain.CleanupResult{Success: true, DeletedCount: 2, Message: "Successfully deleted 2 groups"},
			IntegrityValidation: domain.IntegrityValidationResult{
				IsValid:         true,
				Issues:          []string{},
				OrphanedRecords: map[string]int64{},
				Timestamp:       time.Now().UTC(),
			},
		},
	}
	router := cleanupRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("POST", "/complete", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result domain.CompleteCleanupResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.True(t, result.OverallSuccess)
	assert.True(t, result.IntegrityValidation.IsValid)
}

func TestCleanupHandler_Complete_DeniedMapsToForbidden(t *testing.T) {
	denied := domain.CleanupResult{Success: false, Message: "Permission denied: Only administrators can manage groups.", Outcome: domain.CleanupOutcomeDenied}
	svc := &fakeCleanupService{
		completeResult: domain.CompleteCleanupResult{
			OverallSuccess: false,
			PostsCleanup:   denied,
			GroupsCleanup:  denied,
		},
	}
	router := cleanupRouter(svc, asUser("member-1"))

	req := httptest.NewRequest("POST", "/complete", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCleanupHandler_Complete_IntegrityFailureMapsToInternalError(t *testing.T) {
	svc := &fakeCleanupService{
		completeResult: domain.CompleteCleanupResult{
			OverallSuccess: false,
			PostsCleanup:   domain.CleanupResult{Success: true, Message: "Successfully deleted 0 posts"},
			GroupsCleanup:  domain.CleanupResult{Success: true, Message: "Successfully deleted 0 groups"},
			IntegrityValidation: domain.IntegrityValidationResult{
				IsValid: false,
				Issues:  []string{"Integrity validation failed: scan timed out"},
			},
		},
	}
	router := cleanupRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("POST", "/complete", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestCleanupHandler_Status(t *testing.T) {
	svc := &fakeCleanupService{
		status: &domain.CleanupStatus{
			PostsCount:            10,
			GroupsCount:           2,
			PostLikesCount:        30,
			GroupMembershipsCount: 5,
			LastUpdated:           time.Now().UTC(),
		},
	}
	router := cleanupRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("GET", "/status", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var status domain.CleanupStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, int64(10), status.PostsCount)
	assert.Equal(t, int64(5), status.GroupMembershipsCount)
}

func TestCleanupHandler_Status_Failure(t *testing.T) {
	svc := &fakeCleanupService{statusErr: errors.New("snapshot failed")}
	router := cleanupRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("GET", "/status", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestCleanupHandler_Integrity_ViolationIsStillOK(t *testing.T) {
	svc := &fakeCleanupService{
		integrityResult: &domain.IntegrityValidationResult{
			IsValid:         false,
			Issues:          []string{"Found 3 orphaned post likes"},
			OrphanedRecords: map[string]int64{domain.RecordKindPostLike: 3},
			Timestamp:       time.Now().UTC(),
		},
	}
	router := cleanupRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("GET", "/integrity", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result domain.IntegrityValidationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.False(t, result.IsValid)
	assert.Equal(t, int64(3), result.OrphanedRecords[domain.RecordKindPostLike])
}

func TestCleanupHandler_Integrity_ScanFailure(t *testing.T) {
	svc := &fakeCleanupService{integrityErr: errors.New("store unreachable")}
	router := cleanupRouter(svc, asUser("admin-1"))

	req := httptest.NewRequest("GET", "/integrity", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
