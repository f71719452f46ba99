// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/mailsign/internal/model"
)

// TeamRepository はチームデータの永続化インターフェース。
type TeamRepository interface {
	// FindByID は指定IDのチームを取得する。見つからない場合はnilを返す。
	// 関連するauthentication_providersも合わせてロードする。
	FindByID(ctx context.Context, id string) (*model.Team, error)

	// FindByDomain はカスタムドメインの完全一致でチームを検索する。
	// 見つからない場合はnilを返す。
	FindByDomain(ctx context.Context, domain string) (*model.Team, error)

	// FindBySubdomain はサブドメインでチームを検索する。見つからない場合はnilを返す。
	FindBySubdomain(ctx context.Context, subdomain string) (*model.Team, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを全チーム横断で検索する。
	// 関連するuser_authenticationsも合わせてロードし、作成日時の昇順で返す。
	// 見つからない場合は空スライスを返す。
	FindByEmail(ctx context.Context, email string) ([]*model.User, error)

	// UpdateLastSigninEmailSentAt はサインインメール最終送信日時を更新する。
	UpdateLastSigninEmailSentAt(ctx context.Context, userID string, sentAt time.Time) error

	// UpdateLastActiveAt は最終アクティブ日時を更新する。
	UpdateLastActiveAt(ctx context.Context, userID string, activeAt time.Time) error

	// MarkSignedUp は招待中フラグを解除する（初回サインイン完了時）。
	MarkSignedUp(ctx context.Context, userID string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
