package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"washhub/internal/http/middleware"
	"washhub/internal/models"
	"washhub/internal/repository"
	"washhub/internal/tenant"
	"washhub/internal/ws"
)

type fakeBranchResolver struct {
	branches map[int64]*models.Branch
}

func (f *fakeBranchResolver) GetByID(_ context.Context, id int64) (*models.Branch, error) {
	if b, ok := f.branches[id]; ok {
		return b, nil
	}
	return nil, repository.ErrNotFound
}

func boardRequest(branchID string, tc tenant.Context) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/branches/"+branchID+"/price-board", nil)
	req = mux.SetURLVars(req, map[string]string{"id": branchID})
	return req.WithContext(middleware.WithTenant(req.Context(), tc))
}

func newBoardHandler(resolver BranchResolver) *BoardHandler {
	return NewBoardHandler(ws.NewHub(time.Second, zap.NewNop()), resolver, zap.NewNop())
}

func TestBoardHandler_Subscribe_ForeignOrgBranchDenied(t *testing.T) {
	h := newBoardHandler(&fakeBranchResolver{branches: map[int64]*models.Branch{
		77: {ID: 77, OrgID: 2},
	}})

	rec := httptest.NewRecorder()
	h.Subscribe(rec, boardRequest("77", tenant.NewContext(1, nil)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBoardHandler_Subscribe_UnknownBranch(t *testing.T) {
	h := newBoardHandler(&fakeBranchResolver{branches: map[int64]*models.Branch{}})

	rec := httptest.NewRecorder()
	h.Subscribe(rec, boardRequest("77", tenant.NewContext(1, nil)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBoardHandler_Subscribe_BranchScopedOtherBranchDenied(t *testing.T) {
	h := newBoardHandler(&fakeBranchResolver{branches: map[int64]*models.Branch{
		3: {ID: 3, OrgID: 1},
		4: {ID: 4, OrgID: 1},
	}})

	branchID := int64(3)
	rec := httptest.NewRecorder()
	h.Subscribe(rec, boardRequest("4", tenant.NewContext(1, &branchID)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBoardHandler_Subscribe_Unauthenticated(t *testing.T) {
	h := newBoardHandler(&fakeBranchResolver{branches: map[int64]*models.Branch{}})

	req := httptest.NewRequest(http.MethodGet, "/api/branches/1/price-board", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()
	h.Subscribe(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
