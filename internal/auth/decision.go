package auth

import (
	"time"

	"github.com/hitoshi/mailsign/internal/model"
)

// DecisionKind はサインイン要求に対する処理方針の種別。
type DecisionKind int

const (
	// DecisionSendEmail はサインインメールを送信する。
	DecisionSendEmail DecisionKind = iota
	// DecisionSSORedirect はチームのSSOプロバイダへ転送する。
	DecisionSSORedirect
	// DecisionRateLimited はレート制限により送信を拒否する。
	DecisionRateLimited
)

// Decision はサインイン要求の処理方針。
type Decision struct {
	Kind DecisionKind
	User *model.User
	Team *model.Team
	// Provider はKind == DecisionSSORedirectのときの転送先プロバイダ。
	Provider *model.AuthenticationProvider
}

// selectUser は同一メールアドレスの候補ユーザーから対象を選ぶ。
// リクエストのチームに所属するユーザーを優先し、なければ先頭を返す。
func selectUser(users []*model.User, team *model.Team) *model.User {
	if len(users) == 0 {
		return nil
	}
	if team != nil {
		for _, u := range users {
			if u.TeamID == team.ID {
				return u
			}
		}
	}
	return users[0]
}

// ssoProvider はユーザーの外部プロバイダ認証のうち、チームで有効な
// プロバイダを返す。該当がなければnilを返す。
func ssoProvider(user *model.User, team *model.Team) *model.AuthenticationProvider {
	for _, a := range user.Authentications {
		if p := team.ProviderByID(a.AuthenticationProviderID); p != nil {
			return p
		}
	}
	return nil
}

// decide はユーザーとチームからサインイン要求の処理方針を決定する。
// 判定の順序は固定で、SSO転送がゲストサインイン可否より優先される。
// ゲストサインインが無効な場合はAPIErrorを返す。
func decide(user *model.User, team *model.Team, now time.Time) (Decision, error) {
	// 1. SSOプロバイダが使えるユーザーはメールを送らず転送する
	if p := ssoProvider(user, team); p != nil {
		return Decision{
			Kind:     DecisionSSORedirect,
			User:     user,
			Team:     team,
			Provider: p,
		}, nil
	}

	// 2. ゲストサインインが無効なチームではメール認証を拒否する
	if !team.GuestSignin {
		return Decision{}, model.NewGuestSigninDisabledError()
	}

	// 3. 送信間隔のレート制限
	if withinRateWindow(user.LastSigninEmailSentAt, now) {
		return Decision{Kind: DecisionRateLimited, User: user, Team: team}, nil
	}

	return Decision{Kind: DecisionSendEmail, User: user, Team: team}, nil
}
