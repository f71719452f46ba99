// Package auth はメールアドレスによるパスワードレス認証フローを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/mailsign/internal/metrics"
	"github.com/hitoshi/mailsign/internal/model"
	"github.com/hitoshi/mailsign/internal/repository"
)

// InitiateOutcome はサインイン開始要求の結果種別。
type InitiateOutcome string

const (
	// InitiateEmailSent はサインインメールを送信した（未登録メールの場合も
	// 列挙攻撃対策として同じ結果を返す）。
	InitiateEmailSent InitiateOutcome = "email-sent"
	// InitiateSSORedirect はSSOプロバイダへの転送を指示する。
	InitiateSSORedirect InitiateOutcome = "sso-redirect"
	// InitiateRateLimited はレート制限により送信を拒否した。
	InitiateRateLimited InitiateOutcome = "rate-limited"
)

// InitiateResult はサインイン開始要求の処理結果。
type InitiateResult struct {
	Outcome InitiateOutcome
	// RedirectURL はOutcomeがSSORedirect/RateLimitedのときの遷移先。
	RedirectURL string
}

// CallbackOutcome はコールバック処理の結果種別。
type CallbackOutcome string

const (
	// CallbackSessionEstablished はセッション確立に成功した。
	CallbackSessionEstablished CallbackOutcome = "session-established"
	// CallbackExpiredToken はトークンが期限切れまたは不正だった。
	CallbackExpiredToken CallbackOutcome = "expired-token"
	// CallbackAuthError はチームがメール認証を許可していない。
	CallbackAuthError CallbackOutcome = "auth-error"
	// CallbackSuspended はユーザーが停止中だった。
	CallbackSuspended CallbackOutcome = "suspended"
)

// CallbackResult はコールバック処理の結果。
type CallbackResult struct {
	Outcome     CallbackOutcome
	RedirectURL string
	// Session はOutcomeがSessionEstablishedのときのみ設定される。
	Session *model.Session
}

// SigninEmail はサインインメールの内容。
type SigninEmail struct {
	To      string
	Name    string
	Token   string
	TeamURL string
}

// WelcomeEmail は初回サインイン時のウェルカムメールの内容。
type WelcomeEmail struct {
	To      string
	Name    string
	TeamURL string
}

// Mailer はメール送信のインターフェース。
type Mailer interface {
	SendSigninEmail(ctx context.Context, email SigninEmail) error
	SendWelcomeEmail(ctx context.Context, email WelcomeEmail) error
}

// SessionEstablisher は認証成功後のセッション確立のインターフェース。
type SessionEstablisher interface {
	// SignIn は指定ユーザーのセッションを作成する。
	SignIn(ctx context.Context, user *model.User, team *model.Team, method string) (*model.Session, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// BaseURL はテナント未特定時のリダイレクト先ベースURL。
	BaseURL string
}

// Service はメール認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	teamRepo  repository.TeamRepository
	tokens    *SigninTokenService
	mailer    Mailer
	sessions  SessionEstablisher
	collector metrics.MetricsCollector
	config    ServiceConfig
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	teamRepo repository.TeamRepository,
	tokens *SigninTokenService,
	mailer Mailer,
	sessions SessionEstablisher,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:  userRepo,
		teamRepo:  teamRepo,
		tokens:    tokens,
		mailer:    mailer,
		sessions:  sessions,
		collector: collector,
		config:    config,
		now:       time.Now,
	}
}

// Initiate はサインイン開始要求を処理する。
// teamはホスト名から解決されたチームで、未特定の場合はnil。
// ゲストサインインが無効なチームではmodel.APIErrorを返す。
func (s *Service) Initiate(ctx context.Context, email string, team *model.Team) (*InitiateResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, model.NewEmailRequiredError()
	}

	users, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by email: %w", err)
	}

	// 未登録メールアドレスでも登録済みと同じ応答を返す（列挙攻撃対策）
	user := selectUser(users, team)
	if user == nil {
		s.collector.RecordUnknownEmail()
		slog.Info("signin requested for unknown email")
		return &InitiateResult{Outcome: InitiateEmailSent}, nil
	}

	// テナント未特定の場合はユーザーの所属チームへフォールバック
	if team == nil {
		team, err = s.teamRepo.FindByID(ctx, user.TeamID)
		if err != nil {
			return nil, fmt.Errorf("failed to find team: %w", err)
		}
		if team == nil {
			return nil, fmt.Errorf("team not found for user: %s", user.ID)
		}
	}

	decision, err := decide(user, team, s.now())
	if err != nil {
		return nil, err
	}

	switch decision.Kind {
	case DecisionSSORedirect:
		s.collector.RecordSSORedirect(decision.Provider.Name)
		slog.Info("signin forwarded to sso provider",
			slog.String("user_id", user.ID),
			slog.String("team_id", team.ID),
			slog.String("provider", decision.Provider.Name),
		)
		return &InitiateResult{
			Outcome:     InitiateSSORedirect,
			RedirectURL: team.URL + "/auth/" + decision.Provider.Name,
		}, nil

	case DecisionRateLimited:
		s.collector.RecordSigninRateLimited()
		slog.Warn("signin email rate limited",
			slog.String("user_id", user.ID),
			slog.String("team_id", team.ID),
		)
		return &InitiateResult{
			Outcome:     InitiateRateLimited,
			RedirectURL: team.URL + "?notice=email-auth-ratelimit",
		}, nil
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue signin token: %w", err)
	}

	// メール送信は応答をブロックしない。失敗してもユーザーには
	// 成功応答を返し、ログにのみ残す。
	s.sendAsync(ctx, "signin email", func(ctx context.Context) error {
		return s.mailer.SendSigninEmail(ctx, SigninEmail{
			To:      user.Email,
			Name:    user.Name,
			Token:   token,
			TeamURL: team.URL,
		})
	})

	if err := s.userRepo.UpdateLastSigninEmailSentAt(ctx, user.ID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to record signin email sent: %w", err)
	}

	s.collector.RecordSigninEmailSent()
	slog.Info("signin email sent",
		slog.String("user_id", user.ID),
		slog.String("team_id", team.ID),
	)
	return &InitiateResult{Outcome: InitiateEmailSent}, nil
}

// Callback はサインインメールのコールバックを処理し、セッションを確立する。
// ドメイン上の失敗（期限切れ・停止中等）はエラーではなくOutcomeで表現し、
// 遷移先URLを合わせて返す。
func (s *Service) Callback(ctx context.Context, token string) (*CallbackResult, error) {
	if token == "" {
		return nil, model.NewTokenRequiredError()
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenInvalid) {
			s.collector.RecordCallbackOutcome(string(CallbackExpiredToken))
			slog.Info("signin callback with expired or invalid token")
			return &CallbackResult{
				Outcome:     CallbackExpiredToken,
				RedirectURL: s.config.BaseURL + "/?notice=expired-token",
			}, nil
		}
		return nil, fmt.Errorf("failed to verify signin token: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.collector.RecordCallbackOutcome(string(CallbackExpiredToken))
		return &CallbackResult{
			Outcome:     CallbackExpiredToken,
			RedirectURL: s.config.BaseURL + "/?notice=expired-token",
		}, nil
	}

	team, err := s.teamRepo.FindByID(ctx, user.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	if team == nil {
		return nil, fmt.Errorf("team not found for user: %s", user.ID)
	}

	// トークン発行後にゲストサインインが無効化された場合もここで拒否する
	if !team.GuestSignin {
		s.collector.RecordCallbackOutcome(string(CallbackAuthError))
		slog.Warn("signin callback rejected: guest signin disabled",
			slog.String("user_id", user.ID),
			slog.String("team_id", team.ID),
		)
		return &CallbackResult{
			Outcome:     CallbackAuthError,
			RedirectURL: team.URL + "/?notice=auth-error",
		}, nil
	}

	if user.Suspended {
		s.collector.RecordCallbackOutcome(string(CallbackSuspended))
		slog.Warn("signin callback rejected: user suspended",
			slog.String("user_id", user.ID),
			slog.String("team_id", team.ID),
		)
		return &CallbackResult{
			Outcome:     CallbackSuspended,
			RedirectURL: team.URL + "/?notice=suspended",
		}, nil
	}

	// 招待中ユーザーの初回サインイン: ウェルカムメールを送り招待状態を解除
	if user.Invited {
		s.sendAsync(ctx, "welcome email", func(ctx context.Context) error {
			return s.mailer.SendWelcomeEmail(ctx, WelcomeEmail{
				To:      user.Email,
				Name:    user.Name,
				TeamURL: team.URL,
			})
		})
		if err := s.userRepo.MarkSignedUp(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to mark user signed up: %w", err)
		}
	}

	if err := s.userRepo.UpdateLastActiveAt(ctx, user.ID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to update last active: %w", err)
	}

	session, err := s.sessions.SignIn(ctx, user, team, "email")
	if err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}

	s.collector.RecordCallbackOutcome(string(CallbackSessionEstablished))
	slog.Info("session established via signin email",
		slog.String("user_id", user.ID),
		slog.String("team_id", team.ID),
	)
	return &CallbackResult{
		Outcome:     CallbackSessionEstablished,
		RedirectURL: team.URL + "/home",
		Session:     session,
	}, nil
}

// sendAsync はメール送信を別ゴルーチンで実行する。
// 呼び出し元のリクエストがキャンセルされても送信は継続する。
func (s *Service) sendAsync(ctx context.Context, kind string, send func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := send(ctx); err != nil {
			slog.Error("failed to send "+kind, slog.String("error", err.Error()))
		}
	}()
}
