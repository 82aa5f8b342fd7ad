package group

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository persists groups and memberships in PostgreSQL.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the group and its creator as a joined admin in one
// transaction.
func (r *Repository) Create(ctx context.Context, creatorID string, req *CreateGroupRequest) (*Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	g := &Group{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   creatorID,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO groups (id, name, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		g.ID, g.Name, g.Description, g.CreatedBy, g.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO group_members (id, group_id, user_id, status, role, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), g.ID, creatorID, MemberStatusJoined, MemberRoleAdmin, g.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return g, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Group, error) {
	var g Group
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_by, created_at
		FROM groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}

// ListByUserID returns the groups the user belongs to, newest first.
func (r *Repository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Group, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.description, g.created_by, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	return groups, total, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id string, req *UpdateGroupRequest) (*Group, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE groups
		SET name = COALESCE($2, name), description = COALESCE($3, description)
		WHERE id = $1`,
		id, req.Name, req.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrGroupNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *Repository) AddMember(ctx context.Context, groupID string, req *AddMemberRequest) (*Member, error) {
	role := req.Role
	if role == "" {
		role = MemberRoleMember
	}

	m := &Member{
		ID:       uuid.NewString(),
		GroupID:  groupID,
		UserID:   req.UserID,
		Status:   MemberStatusInvited,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (id, group_id, user_id, status, role, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.GroupID, m.UserID, m.Status, m.Role, m.JoinedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrMemberAlreadyExists
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

func (r *Repository) GetMembers(ctx context.Context, groupID string) ([]*Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.group_id, m.user_id, m.status, m.role, m.joined_at, u.username, u.email
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.joined_at`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var m Member
		err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Status, &m.Role, &m.JoinedAt, &m.Username, &m.Email)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (r *Repository) GetMember(ctx context.Context, groupID, userID string) (*Member, error) {
	var m Member
	err := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, user_id, status, role, joined_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2`, groupID, userID).
		Scan(&m.ID, &m.GroupID, &m.UserID, &m.Status, &m.Role, &m.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

func (r *Repository) UpdateMember(ctx context.Context, groupID, userID string, req *UpdateMemberRequest) (*Member, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE group_members
		SET status = COALESCE($3, status), role = COALESCE($4, role)
		WHERE group_id = $1 AND user_id = $2`,
		groupID, userID, req.Status, req.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrMemberNotFound
	}
	return r.GetMember(ctx, groupID, userID)
}

func (r *Repository) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// IsMember reports whether the user has a JOINED membership in the group.
// Invited users do not count until they accept.
func (r *Repository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM group_members
			WHERE group_id = $1 AND user_id = $2 AND status = $3
		)`, groupID, userID, MemberStatusJoined).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}
