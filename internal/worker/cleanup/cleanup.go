// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// 有効期限を過ぎてから猶予期間（デフォルト7日）を超過したセッションを
// 日次バッチで削除する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db        Executor
	logger    *slog.Logger
	GraceDays int // 期限切れ後にレコードを保持する日数（デフォルト: 7）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの猶予日数は7日。
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:        db,
		logger:    logger,
		GraceDays: 7,
	}
}

// Run は猶予期間を超過した期限切れセッションを削除する。
// expires_atがGraceDays日前より古いセッションをDELETEする。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	interval := fmt.Sprintf("%d days", j.GraceDays)

	query := `DELETE FROM sessions WHERE expires_at < now() - $1::interval`
	result, err := j.db.ExecContext(ctx, query, interval)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("grace_days", j.GraceDays),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("grace_days", j.GraceDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
