// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/mailsign/internal/auth"
	"github.com/hitoshi/mailsign/internal/middleware"
	"github.com/hitoshi/mailsign/internal/model"
)

const sessionCookieName = "session_id"

// AuthServiceInterface は認証ハンドラーが必要とするメール認証サービスのインターフェース。
type AuthServiceInterface interface {
	Initiate(ctx context.Context, email string, team *model.Team) (*auth.InitiateResult, error)
	Callback(ctx context.Context, token string) (*auth.CallbackResult, error)
}

// SessionServiceInterface はセッション管理に必要なサービスのインターフェース。
type SessionServiceInterface interface {
	Logout(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// TenantResolverInterface はリクエストのホスト名からチームを解決するインターフェース。
type TenantResolverInterface interface {
	Resolve(ctx context.Context, hostname string) (*model.Team, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はメール認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	sessions SessionServiceInterface
	tenants  TenantResolverInterface
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(
	service AuthServiceInterface,
	sessions SessionServiceInterface,
	tenants TenantResolverInterface,
	config AuthHandlerConfig,
) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		tenants:  tenants,
		config:   config,
	}
}

// initiateRequest はサインイン開始リクエストのボディ。
type initiateRequest struct {
	Email string `json:"email"`
}

// Initiate はサインインメールの送信を開始する。
// POST /auth/email
//
// リクエストのHostヘッダーからチームを解決し、該当ユーザーへ
// サインインメールを送る。未登録メールアドレスに対しても成功応答を返す。
func (h *AuthHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewEmailRequiredError())
		return
	}

	// ホスト名からのテナント解決。未解決（nil）は許容し、
	// サービス側でユーザーの所属チームへフォールバックさせる。
	team, err := h.tenants.Resolve(r.Context(), r.Host)
	if err != nil {
		slog.Error("failed to resolve tenant", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	result, err := h.service.Initiate(r.Context(), req.Email, team)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			middleware.WriteErrorResponse(w, statusForAPIError(apiErr), apiErr)
			return
		}
		slog.Error("signin initiation failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	switch result.Outcome {
	case auth.InitiateSSORedirect:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"redirect": result.RedirectURL,
		})
	case auth.InitiateRateLimited:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  false,
			"message":  "Rate limit exceeded",
			"redirect": result.RedirectURL,
		})
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
		})
	}
}

// Callback はサインインメール内のリンクからのコールバックを処理する。
// GET /auth/email.callback?token=xxx
//
// トークンが有効ならセッションCookieを設定してチームのホームへ、
// 無効なら結果に応じたnotice付きURLへリダイレクトする。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	result, err := h.service.Callback(r.Context(), token)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			middleware.WriteErrorResponse(w, statusForAPIError(apiErr), apiErr)
			return
		}
		slog.Error("signin callback failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	if result.Outcome == auth.CallbackSessionEstablished {
		// セッションCookieを設定（HTTP Only）
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    result.Session.ID,
			Path:     "/",
			Domain:   h.config.CookieDomain,
			MaxAge:   h.config.SessionMaxAge,
			HttpOnly: true,
			Secure:   h.config.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

// Logout はセッションを破棄する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// セッションCookieの取得
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		// セッションをDBから削除
		if logoutErr := h.sessions.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	// セッションCookieをクリア
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.config.BaseURL, http.StatusTemporaryRedirect)
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.sessions.GetCurrentUser(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to get current user", slog.String("error", err.Error()))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"team_id": user.TeamID,
	})
}

// CurrentSession は認証済みリクエストのセッション情報を返す。
// GET /api/session（セッションミドルウェアの後段に配置）
func (h *AuthHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
	})
}

// statusForAPIError はAPIErrorのカテゴリからHTTPステータスコードを決定する。
func statusForAPIError(apiErr *model.APIError) int {
	switch apiErr.Category {
	case "validation":
		return http.StatusBadRequest
	case "auth":
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
