package model

import "time"

// Session はユーザーのログインセッションを表す。
// コールバック成功時に発行され、HTTP Only Cookieで保持される。
type Session struct {
	ID        string
	UserID    string
	TeamID    string
	Method    string // セッション確立手段。"email" 等
	ExpiresAt time.Time
	CreatedAt time.Time
}
