// Package tenant derives the visibility window of a caller. Every entity
// carries an org column and most carry a branch column; a caller is either
// branch-scoped (sees one branch) or org-wide (branch id absent).
package tenant

import "fmt"

// Context identifies the tenant a request acts on behalf of. BranchID nil
// means the caller is organization-wide.
type Context struct {
	OrgID    int64
	BranchID *int64
}

// NewContext builds a tenant context. branchID may be nil.
func NewContext(orgID int64, branchID *int64) Context {
	return Context{OrgID: orgID, BranchID: branchID}
}

// IsBranchScoped reports whether the caller is pinned to a single branch.
func (c Context) IsBranchScoped() bool {
	return c.BranchID != nil
}

// Scope appends tenant predicates to a raw-SQL condition list. The org
// predicate is always added; the branch predicate only for branch-scoped
// callers. Placeholders continue from len(args).
func (c Context) Scope(conds []string, args []interface{}, orgColumn, branchColumn string) ([]string, []interface{}) {
	args = append(args, c.OrgID)
	conds = append(conds, fmt.Sprintf("%s = $%d", orgColumn, len(args)))
	if c.BranchID != nil {
		args = append(args, *c.BranchID)
		conds = append(conds, fmt.Sprintf("%s = $%d", branchColumn, len(args)))
	}
	return conds, args
}

// AllowsOrg reports whether an entity in the given org is visible to the caller.
func (c Context) AllowsOrg(orgID int64) bool {
	return orgID == c.OrgID
}

// Allows reports whether an entity with the given org and branch columns is
// visible to the caller. Org mismatch always denies. A branch-scoped caller
// additionally requires the entity's branch to be present and equal; an
// org-wide caller sees every branch of its org, including branch-less rows.
func (c Context) Allows(orgID int64, branchID *int64) bool {
	if orgID != c.OrgID {
		return false
	}
	if c.BranchID == nil {
		return true
	}
	return branchID != nil && *branchID == *c.BranchID
}

// AllowsBranch is Allows for entities whose branch column is NOT NULL,
// such as pricing rules.
func (c Context) AllowsBranch(orgID, branchID int64) bool {
	return c.Allows(orgID, &branchID)
}
