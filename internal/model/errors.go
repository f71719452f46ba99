// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmailRequired       = "EMAIL_REQUIRED"
	ErrCodeTokenRequired       = "TOKEN_REQUIRED"
	ErrCodeGuestSigninDisabled = "GUEST_SIGNIN_DISABLED"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
)

// NewEmailRequiredError はemailフィールドの入力検証エラーを生成する。
// ルックアップ実行前に拒否される唯一のInitiate系エラー。
func NewEmailRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailRequired,
		Message:  "メールアドレスが指定されていないか、形式が不正です。",
		Category: "validation",
		Action:   "正しいメールアドレスを入力してください。",
	}
}

// NewTokenRequiredError はtokenクエリパラメータの入力検証エラーを生成する。
func NewTokenRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenRequired,
		Message:  "トークンが指定されていません。",
		Category: "validation",
		Action:   "サインインメールのリンクからアクセスしてください。",
	}
}

// NewGuestSigninDisabledError はゲストサインイン無効チームへの認可エラーを生成する。
// 汎用成功レスポンスに畳み込まず、明示的な認可エラーとして伝播させる。
func NewGuestSigninDisabledError() *APIError {
	return &APIError{
		Code:     ErrCodeGuestSigninDisabled,
		Message:  "このチームではメールによるサインインが許可されていません。",
		Category: "auth",
		Action:   "チームの管理者が設定したサインイン方法を利用してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "サインインし直してください。",
	}
}
