package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Session level messages (info)
		"Loading %s":                            "%s を読み込み中",
		"Loaded %s as session %s: %.2fs, %dx%d": "%s をセッション %s として読み込みました: %.2f 秒, %dx%d",
		"Frame %d at %.2fs: marker at (%d, %d)": "フレーム %d (%.2f 秒): マーカー位置 (%d, %d)",
		"Scan finished: %d frames, %d markers":  "スキャン完了: %d フレーム, %d マーカー",
		"Report saved to %s":                    "レポートを %s に保存しました",
		"Interrupted, shutting down...":         "中断されました。シャットダウン中...",

		// Prober
		"Probing %s":              "%s を解析中",
		"Probed %s: %.2fs, %dx%d": "%s の解析完了: %.2f 秒, %dx%d",

		// Decoder
		"Started decoder pid %d at %.3fs": "デコーダーを起動しました pid %d (%.3f 秒から)",
		"Started session %s at %.3fs":     "セッション %s を %.3f 秒から開始しました",
		"Stopped decoder for session %s":  "セッション %s のデコーダーを停止しました",
		"Failed to stop decoder: %v":      "デコーダーの停止に失敗しました: %v",
		"End of stream after %d frames":   "%d フレームでストリームが終了しました",
		"Frame read timed out after %s":   "フレーム読み込みが %s でタイムアウトしました",
		"Dropped malformed frame: %v":     "不正なフレームを破棄しました: %v",
		"Seeking session %s to %.3fs":     "セッション %s を %.3f 秒へシーク中",
		"Read failed: %v":                 "読み込みに失敗しました: %v",

		// Worker
		"Ignoring seek without a loaded file": "ファイル未読み込みのためシークを無視します",
		"Unknown command %T":                  "不明なコマンド %T",

		// Controller
		"No frame for %s, stopping":         "%s の間フレームがないため停止します",
		"Failed to save debug frame %d: %v": "デバッグフレーム %d の保存に失敗しました: %v",

		// Errors
		"Video error: %s": "動画エラー: %s",
	})
}
