package auth

import "time"

// signinEmailRateWindow はユーザーごとのサインインメール送信間隔の下限。
const signinEmailRateWindow = 2 * time.Minute

// withinRateWindow は前回のサインインメール送信からレート制限ウィンドウ内
// であるかを判定する。lastSentAtがnilの場合は制限しない。
//
// 判定と送信記録の更新はアトミックではない。並行リクエストが同時に
// 判定を通過した場合は複数のメールが送信されうるが、どのトークンも
// 有効であり害はないため許容する。
func withinRateWindow(lastSentAt *time.Time, now time.Time) bool {
	if lastSentAt == nil {
		return false
	}
	return lastSentAt.After(now.Add(-signinEmailRateWindow))
}
