// Package model はドメインモデルを定義する。
package model

import "time"

// User はチームに所属するユーザーを表す。
// 同一メールアドレスのユーザーが複数チームに存在することは正常であり、
// (user, team) の組はリクエストごとに1つだけ選択される。
type User struct {
	ID     string
	Email  string // 小文字に正規化して扱う
	Name   string
	TeamID string

	// Authentications は外部IdPとの紐付け。リポジトリがユーザーと同時にロードする。
	// 1件以上ある場合、メールサインインではなくSSOへ転送する。
	Authentications []UserAuthentication

	// LastSigninEmailSentAt はサインインメールの最終送信時刻。未送信の場合はnil。
	// メール送信レート制限の判定に使用し、送信のたびに更新される。
	LastSigninEmailSentAt *time.Time

	// LastActiveAt はコールバック成功時に更新される最終アクティブ時刻。
	LastActiveAt *time.Time

	Suspended bool
	Invited   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserAuthentication はユーザーと外部IdPの紐付けを表す。
type UserAuthentication struct {
	ID                       string
	UserID                   string
	AuthenticationProviderID string
	CreatedAt                time.Time
}
