package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/mailsign/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userSelectColumns = `id, email, name, team_id, last_signin_email_sent_at, last_active_at, suspended, invited, created_at, updated_at`

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userSelectColumns+` FROM users WHERE id = $1`,
		id,
	), user)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	if err := r.loadAuthentications(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail は指定メールアドレスのユーザーを全チーム横断で検索する。
// 関連するuser_authenticationsも合わせてロードし、作成日時の昇順で返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userSelectColumns+`
		 FROM users
		 WHERE email = $1
		 ORDER BY created_at ASC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by email: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := scanUser(rows, user); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	for _, user := range users {
		if err := r.loadAuthentications(ctx, user); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// UpdateLastSigninEmailSentAt はサインインメール最終送信日時を更新する。
func (r *PostgresUserRepo) UpdateLastSigninEmailSentAt(ctx context.Context, userID string, sentAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_signin_email_sent_at = $1, updated_at = now() WHERE id = $2`,
		sentAt, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update last_signin_email_sent_at: %w", err)
	}
	return nil
}

// UpdateLastActiveAt は最終アクティブ日時を更新する。
func (r *PostgresUserRepo) UpdateLastActiveAt(ctx context.Context, userID string, activeAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_active_at = $1, updated_at = now() WHERE id = $2`,
		activeAt, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update last_active_at: %w", err)
	}
	return nil
}

// MarkSignedUp は招待中フラグを解除する（初回サインイン完了時）。
func (r *PostgresUserRepo) MarkSignedUp(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET invited = false, updated_at = now() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark user signed up: %w", err)
	}
	return nil
}

// loadAuthentications はユーザーに紐づく外部プロバイダ認証情報をロードする。
func (r *PostgresUserRepo) loadAuthentications(ctx context.Context, user *model.User) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, authentication_provider_id, created_at
		 FROM user_authentications
		 WHERE user_id = $1
		 ORDER BY created_at ASC`,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load user authentications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.UserAuthentication
		if err := rows.Scan(&a.ID, &a.UserID, &a.AuthenticationProviderID, &a.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan user authentication: %w", err)
		}
		user.Authentications = append(user.Authentications, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate user authentications: %w", err)
	}
	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsの両方を受けるための最小インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, user *model.User) error {
	var lastSent, lastActive sql.NullTime
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.TeamID,
		&lastSent, &lastActive,
		&user.Suspended, &user.Invited,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if lastSent.Valid {
		user.LastSigninEmailSentAt = &lastSent.Time
	}
	if lastActive.Valid {
		user.LastActiveAt = &lastActive.Time
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
