package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/indra210595/chat-app/internal/domain"
)

// Stores exposes the durable-state capabilities on top of a single sqlite
// connection. Timestamps are stored as RFC3339 text.
type Stores struct {
	db *sql.DB
}

func (s *Sqlite) Stores() *Stores {
	return &Stores{db: s.Db}
}

var (
	_ domain.MessageStore = (*Stores)(nil)
	_ domain.GroupStore   = (*Stores)(nil)
	_ domain.UserStore    = (*Stores)(nil)
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// schema default writes RFC3339; tolerate the sqlite datetime form
		t, _ = time.Parse("2006-01-02 15:04:05", s)
	}
	return t
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// ---- MessageStore ----

func (s *Stores) Insert(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	if (m.ReceiverID == 0) == (m.GroupID == 0) {
		return nil, errors.New("message must have exactly one of receiver_id, group_id")
	}
	m.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (content, sender_id, receiver_id, group_id, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		m.Content, m.SenderID, nullID(m.ReceiverID), nullID(m.GroupID), fmtTime(m.CreatedAt))
	if err != nil {
		return nil, err
	}
	m.ID, _ = res.LastInsertId()
	return m, nil
}

func (s *Stores) Get(ctx context.Context, id int64) (*domain.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, sender_id, receiver_id, group_id, created_at, is_read
		 FROM messages WHERE id=?`, id)
	return scanMessage(row)
}

func (s *Stores) SetRead(ctx context.Context, id int64, read bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE messages SET is_read=? WHERE id=?`, read, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Stores) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Stores) PrivateHistory(ctx context.Context, a, b int64) ([]*domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, sender_id, receiver_id, group_id, created_at, is_read
		 FROM messages
		 WHERE (sender_id=? AND receiver_id=?) OR (sender_id=? AND receiver_id=?)
		 ORDER BY created_at ASC, id ASC`, a, b, b, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (s *Stores) GroupHistory(ctx context.Context, groupID int64) ([]*domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, sender_id, receiver_id, group_id, created_at, is_read
		 FROM messages WHERE group_id=? ORDER BY created_at ASC, id ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	var receiver, group sql.NullInt64
	var createdAt string
	err := row.Scan(&m.ID, &m.Content, &m.SenderID, &receiver, &group, &createdAt, &m.IsRead)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.ReceiverID = receiver.Int64
	m.GroupID = group.Int64
	m.CreatedAt = parseTime(createdAt)
	return &m, nil
}

func scanMessages(rows *sql.Rows) ([]*domain.Message, error) {
	var list []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ---- GroupStore ----

func (s *Stores) CreateWithAdmin(ctx context.Context, name string, adminID int64) (*domain.Group, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	createdAt := time.Now().UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO groups (name, admin_id, created_at) VALUES (?, ?, ?)`,
		name, adminID, fmtTime(createdAt))
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, 'admin')`,
		id, adminID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &domain.Group{ID: id, Name: name, AdminID: adminID, CreatedAt: createdAt}, nil
}

func (s *Stores) MembersOf(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM group_members WHERE group_id=?`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		members = append(members, uid)
	}
	return members, rows.Err()
}

func (s *Stores) RoleOf(ctx context.Context, groupID, userID int64) (domain.Role, error) {
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT role FROM group_members WHERE group_id=? AND user_id=?`,
		groupID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return domain.Role(role), nil
}

func (s *Stores) AddMember(ctx context.Context, groupID, userID int64, role domain.Role) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupID, userID, string(role))
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (s *Stores) GroupsFor(ctx context.Context, userID int64) ([]domain.GroupMembership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.admin_id, g.created_at, gm.role
		 FROM groups g JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id=? ORDER BY g.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.GroupMembership
	for rows.Next() {
		var g domain.Group
		var createdAt, role string
		if err := rows.Scan(&g.ID, &g.Name, &g.AdminID, &createdAt, &role); err != nil {
			return nil, err
		}
		g.CreatedAt = parseTime(createdAt)
		list = append(list, domain.GroupMembership{Group: g, Role: domain.Role(role)})
	}
	return list, rows.Err()
}

// ---- UserStore ----

func (s *Stores) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, fmtTime(u.CreatedAt))
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	u.ID, _ = res.LastInsertId()
	return u, nil
}

func (s *Stores) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email=?`, email)
	return scanUser(row)
}

func (s *Stores) ByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id=?`, id)
	return scanUser(row)
}

func (s *Stores) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}
