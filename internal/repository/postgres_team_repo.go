package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/mailsign/internal/model"
)

// PostgresTeamRepo はPostgreSQLを使用したチームリポジトリ。
type PostgresTeamRepo struct {
	db *sql.DB
}

// NewPostgresTeamRepo はPostgresTeamRepoを生成する。
func NewPostgresTeamRepo(db *sql.DB) *PostgresTeamRepo {
	return &PostgresTeamRepo{db: db}
}

const teamSelectColumns = `id, name, domain, subdomain, guest_signin, url, created_at, updated_at`

// FindByID は指定IDのチームを取得する。見つからない場合はnilを返す。
// 関連するauthentication_providersも合わせてロードする。
func (r *PostgresTeamRepo) FindByID(ctx context.Context, id string) (*model.Team, error) {
	return r.findOne(ctx,
		`SELECT `+teamSelectColumns+` FROM teams WHERE id = $1`,
		id,
	)
}

// FindByDomain はカスタムドメインの完全一致でチームを検索する。見つからない場合はnilを返す。
func (r *PostgresTeamRepo) FindByDomain(ctx context.Context, domain string) (*model.Team, error) {
	return r.findOne(ctx,
		`SELECT `+teamSelectColumns+` FROM teams WHERE domain = $1`,
		domain,
	)
}

// FindBySubdomain はサブドメインでチームを検索する。見つからない場合はnilを返す。
func (r *PostgresTeamRepo) FindBySubdomain(ctx context.Context, subdomain string) (*model.Team, error) {
	return r.findOne(ctx,
		`SELECT `+teamSelectColumns+` FROM teams WHERE subdomain = $1`,
		subdomain,
	)
}

func (r *PostgresTeamRepo) findOne(ctx context.Context, query string, arg any) (*model.Team, error) {
	team := &model.Team{}
	var domain, subdomain sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&team.ID, &team.Name, &domain, &subdomain,
		&team.GuestSignin, &team.URL, &team.CreatedAt, &team.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	team.Domain = domain.String
	team.Subdomain = subdomain.String

	if err := r.loadProviders(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// loadProviders はチームに紐づく認証プロバイダをロードする。
func (r *PostgresTeamRepo) loadProviders(ctx context.Context, team *model.Team) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, team_id
		 FROM authentication_providers
		 WHERE team_id = $1
		 ORDER BY created_at ASC`,
		team.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load authentication providers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.AuthenticationProvider
		if err := rows.Scan(&p.ID, &p.Name, &p.TeamID); err != nil {
			return fmt.Errorf("failed to scan authentication provider: %w", err)
		}
		team.AuthenticationProviders = append(team.AuthenticationProviders, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate authentication providers: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TeamRepository = (*PostgresTeamRepo)(nil)
