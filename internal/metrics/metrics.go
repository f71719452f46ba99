// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証サービス層から利用する。
type MetricsCollector interface {
	RecordSigninEmailSent()
	RecordSigninRateLimited()
	RecordSSORedirect(provider string)
	RecordUnknownEmail()
	RecordCallbackOutcome(outcome string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signinEmailSent  prometheus.Counter
	signinRateLimit  prometheus.Counter
	ssoRedirect      *prometheus.CounterVec
	unknownEmail     prometheus.Counter
	callbackOutcomes *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signinEmailSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailsign_signin_email_sent_total",
			Help: "送信されたサインインメールの合計数",
		}),
		signinRateLimit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailsign_signin_ratelimited_total",
			Help: "レート制限で拒否されたサインイン要求の合計数",
		}),
		ssoRedirect: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailsign_signin_sso_redirect_total",
			Help: "SSOプロバイダへ転送されたサインイン要求の数",
		}, []string{"provider"}),
		unknownEmail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailsign_signin_unknown_email_total",
			Help: "未登録メールアドレスによるサインイン要求の合計数",
		}),
		callbackOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailsign_callback_outcome_total",
			Help: "コールバック処理の結果別の数",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.signinEmailSent,
		c.signinRateLimit,
		c.ssoRedirect,
		c.unknownEmail,
		c.callbackOutcomes,
	)

	return c
}

// RecordSigninEmailSent はサインインメール送信を記録する。
func (c *Collector) RecordSigninEmailSent() {
	c.signinEmailSent.Inc()
}

// RecordSigninRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordSigninRateLimited() {
	c.signinRateLimit.Inc()
}

// RecordSSORedirect はSSOプロバイダへの転送を記録する。
func (c *Collector) RecordSSORedirect(provider string) {
	c.ssoRedirect.WithLabelValues(provider).Inc()
}

// RecordUnknownEmail は未登録メールアドレスの要求を記録する。
func (c *Collector) RecordUnknownEmail() {
	c.unknownEmail.Inc()
}

// RecordCallbackOutcome はコールバック処理の結果を記録する。
// outcome: "session-established", "expired-token", "auth-error", "suspended"
func (c *Collector) RecordCallbackOutcome(outcome string) {
	c.callbackOutcomes.WithLabelValues(outcome).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
