// Package tenant はリクエストのホスト名からチームを特定する。
package tenant

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/hitoshi/mailsign/internal/model"
	"github.com/hitoshi/mailsign/internal/repository"
)

// reservedSubdomains はチームのサブドメインとして解釈しないラベル。
var reservedSubdomains = map[string]bool{
	"www": true,
	"app": true,
	"api": true,
}

// Resolver はホスト名からチームを解決する。
// カスタムドメインの完全一致を優先し、次にベースホストのサブドメインを試す。
type Resolver struct {
	teamRepo          repository.TeamRepository
	baseHost          string
	subdomainsEnabled bool
}

// NewResolver はResolverを生成する。
// baseHostはポート番号を含まないアプリケーションのベースホスト名。
func NewResolver(teamRepo repository.TeamRepository, baseHost string, subdomainsEnabled bool) *Resolver {
	return &Resolver{
		teamRepo:          teamRepo,
		baseHost:          strings.ToLower(baseHost),
		subdomainsEnabled: subdomainsEnabled,
	}
}

// Resolve はホスト名からチームを解決する。
// 解決できない場合は (nil, nil) を返す。呼び出し側はnilチームを
// 「テナント未特定」として扱い、チームなしのフローへフォールバックする。
func (r *Resolver) Resolve(ctx context.Context, hostname string) (*model.Team, error) {
	host := normalizeHost(hostname)
	if host == "" {
		return nil, nil
	}

	// 1. カスタムドメインの完全一致
	team, err := r.teamRepo.FindByDomain(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve team by domain: %w", err)
	}
	if team != nil {
		return team, nil
	}

	// 2. ベースホストのサブドメイン
	if !r.subdomainsEnabled {
		return nil, nil
	}

	label, ok := r.subdomainLabel(host)
	if !ok {
		return nil, nil
	}

	team, err = r.teamRepo.FindBySubdomain(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve team by subdomain: %w", err)
	}
	return team, nil
}

// subdomainLabel はホスト名からサブドメインラベルを取り出す。
// ベースホスト自身、多段サブドメイン、予約ラベルはチームとして解釈しない。
func (r *Resolver) subdomainLabel(host string) (string, bool) {
	if host == r.baseHost {
		return "", false
	}

	suffix := "." + r.baseHost
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}

	label := strings.TrimSuffix(host, suffix)
	if label == "" || strings.Contains(label, ".") {
		return "", false
	}
	if reservedSubdomains[label] {
		return "", false
	}
	return label, true
}

// normalizeHost はホスト名を小文字化し、ポート番号を取り除く。
func normalizeHost(hostname string) string {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}
