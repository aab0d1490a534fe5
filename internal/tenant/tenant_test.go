package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestScope_OrgWideCaller(t *testing.T) {
	tc := NewContext(42, nil)

	conds, args := tc.Scope(nil, nil, "org_id", "branch_id")

	assert.Equal(t, []string{"org_id = $1"}, conds)
	assert.Equal(t, []interface{}{int64(42)}, args)
}

func TestScope_BranchScopedCaller(t *testing.T) {
	tc := NewContext(42, ptr(3))

	conds, args := tc.Scope(nil, nil, "org_id", "branch_id")

	assert.Equal(t, []string{"org_id = $1", "branch_id = $2"}, conds)
	assert.Equal(t, []interface{}{int64(42), int64(3)}, args)
}

func TestScope_ContinuesPlaceholderNumbering(t *testing.T) {
	tc := NewContext(42, ptr(3))

	conds := []string{"deleted_at IS NULL", "service_id = $1"}
	args := []interface{}{int64(10)}
	conds, args = tc.Scope(conds, args, "org_id", "branch_id")

	assert.Equal(t, []string{"deleted_at IS NULL", "service_id = $1", "org_id = $2", "branch_id = $3"}, conds)
	assert.Equal(t, []interface{}{int64(10), int64(42), int64(3)}, args)
}

func TestAllows(t *testing.T) {
	cases := []struct {
		name     string
		ctx      Context
		orgID    int64
		branchID *int64
		want     bool
	}{
		{"org mismatch denies", NewContext(1, nil), 2, ptr(3), false},
		{"org-wide caller sees any branch", NewContext(1, nil), 1, ptr(7), true},
		{"org-wide caller sees branchless rows", NewContext(1, nil), 1, nil, true},
		{"branch caller sees own branch", NewContext(1, ptr(3)), 1, ptr(3), true},
		{"branch caller denied other branch", NewContext(1, ptr(3)), 1, ptr(4), false},
		{"branch caller denied branchless rows", NewContext(1, ptr(3)), 1, nil, false},
		{"branch caller denied other org even on same branch id", NewContext(1, ptr(3)), 2, ptr(3), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ctx.Allows(tc.orgID, tc.branchID))
		})
	}
}

func TestAllowsBranch(t *testing.T) {
	tc := NewContext(1, ptr(3))
	assert.True(t, tc.AllowsBranch(1, 3))
	assert.False(t, tc.AllowsBranch(1, 4))
	assert.False(t, tc.AllowsBranch(2, 3))

	orgWide := NewContext(1, nil)
	assert.True(t, orgWide.AllowsBranch(1, 99))
}
