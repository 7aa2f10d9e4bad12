package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"geoquiz/internal/domain"
	"github.com/uptrace/bun"
)

type UserRow struct {
	bun.BaseModel `bun:"table:users"`

	ID            int64  `bun:"id,pk,autoincrement"`
	Username      string `bun:"username,notnull,unique"`
	Password      string `bun:"password,notnull"`
	CreatedDate   string `bun:"created_date,notnull"`
	LastLoginDate string `bun:"last_login_date,notnull"`
}

// UserStore keeps accounts. Passwords are stored and compared as plain text.
type UserStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db, now: time.Now}
}

// Authenticate checks the credentials and stamps the login date on success.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	var row UserRow
	err := s.db.NewSelect().Model(&row).
		Where("username = ?", username).
		Where("password = ?", password).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, &domain.RepositoryError{Op: "authenticate", Err: err}
	}

	row.LastLoginDate = FormatDate(s.now())
	_, err = s.db.NewUpdate().Model(&row).
		Column("last_login_date").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.User{}, &domain.RepositoryError{Op: "update last login", Err: err}
	}
	return decodeUser(row)
}

// Create inserts u, failing with domain.ErrUsernameTaken when the name exists.
// The unique index decides, so concurrent registrations of one name cannot both win.
func (s *UserStore) Create(ctx context.Context, u domain.User) (domain.User, error) {
	row := UserRow{
		Username:      u.Username,
		Password:      u.Password,
		CreatedDate:   FormatDate(u.CreatedDate),
		LastLoginDate: FormatDate(u.LastLoginDate),
	}
	res, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (username) DO NOTHING").
		Returning("id").
		Exec(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUsernameTaken
	}
	if err != nil {
		return domain.User{}, &domain.RepositoryError{Op: "create user", Err: err}
	}
	if n, err := res.RowsAffected(); (err == nil && n == 0) || row.ID == 0 {
		return domain.User{}, domain.ErrUsernameTaken
	}
	u.ID = row.ID
	return u, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var row UserRow
	err := s.db.NewSelect().Model(&row).Where("username = ?", username).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("user %q: %w", username, domain.ErrUserNotFound)
	}
	if err != nil {
		return domain.User{}, &domain.RepositoryError{Op: "find user", Err: err}
	}
	return decodeUser(row)
}

func decodeUser(row UserRow) (domain.User, error) {
	created, err := ParseDate(row.CreatedDate)
	if err != nil {
		return domain.User{}, fmt.Errorf("decode user %d: %w", row.ID, err)
	}
	lastLogin, err := ParseDate(row.LastLoginDate)
	if err != nil {
		return domain.User{}, fmt.Errorf("decode user %d: %w", row.ID, err)
	}
	return domain.User{
		ID:            row.ID,
		Username:      row.Username,
		Password:      row.Password,
		CreatedDate:   created,
		LastLoginDate: lastLogin,
	}, nil
}
