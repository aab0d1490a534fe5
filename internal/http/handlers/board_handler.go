package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/ws"
)

// BranchResolver loads branches for board authorization.
type BranchResolver interface {
	GetByID(ctx context.Context, id int64) (*models.Branch, error)
}

// BoardHandler upgrades price-board subscriptions to WebSocket.
type BoardHandler struct {
	hub      *ws.Hub
	branches BranchResolver
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewBoardHandler returns handler.
func NewBoardHandler(hub *ws.Hub, branches BranchResolver, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		hub:      hub,
		branches: branches,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Subscribe handles GET /branches/{id}/price-board. The board carries the
// branch's price events, so the branch must belong to the caller's org;
// branch-scoped callers may only watch their own branch.
func (h *BoardHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	branchID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if tc.IsBranchScoped() && *tc.BranchID != branchID {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return
	}
	branch, err := h.branches.GetByID(r.Context(), branchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !tc.AllowsOrg(branch.OrgID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	h.logger.Info("price board connected", zap.Int64("branch_id", branchID))
	// The request context dies once the handler returns; the hijacked
	// connection lives until the peer goes away.
	go h.hub.Serve(context.Background(), conn, branchID)
}
