package model

import "time"

// Team はテナント（ワークスペース）を表す。この認証基盤からは読み取り専用。
type Team struct {
	ID   string
	Name string

	// Domain はチームに登録されたカスタムドメイン。未設定の場合は空文字。
	Domain string

	// Subdomain はベースホスト配下のカスタムサブドメインのラベル。未設定の場合は空文字。
	Subdomain string

	// GuestSignin はメールによるゲストサインインを許可するかどうか。
	GuestSignin bool

	// URL はチームの正規URL。サインイン完了後のリダイレクト先となる。
	URL string

	// AuthenticationProviders はチームに設定されたIdPの一覧（設定順）。
	AuthenticationProviders []AuthenticationProvider

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthenticationProvider はチームに紐付く外部IdPの設定を表す。
type AuthenticationProvider struct {
	ID     string
	Name   string // "google", "slack" 等。SSO転送先パスの構築に使用する
	TeamID string
}

// ProviderByID は指定IDのAuthenticationProviderを返す。見つからない場合はnilを返す。
func (t *Team) ProviderByID(id string) *AuthenticationProvider {
	for i := range t.AuthenticationProviders {
		if t.AuthenticationProviders[i].ID == id {
			return &t.AuthenticationProviders[i]
		}
	}
	return nil
}
