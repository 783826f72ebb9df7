// Package main provides localization for the cursorscan CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Locate the cursor marker in every frame of a video.": "動画の各フレームからカーソルマーカーを検出します。",

		// Commands
		"Scan a video for the cursor marker.":      "動画をスキャンしてカーソルマーカーを検出",
		"Show duration and frame size of a video.": "動画の長さとフレームサイズを表示",
		"Show version information.":                "バージョン情報を表示",

		// Arguments
		"Video file to scan.":  "スキャンする動画ファイル",
		"Video file to probe.": "解析する動画ファイル",

		// Configuration
		"YAML configuration file.":                                       "YAML設定ファイル",
		"Environment file loaded before reading CURSORSCAN_* variables.": "CURSORSCAN_* 変数を読み込む前に読み込む環境ファイル",

		// Decoder
		"Path to ffmpeg executable (falls back to FFMPEG_PATH env, then ./ffmpeg, then PATH).": "ffmpeg実行ファイルのパス（未指定時は FFMPEG_PATH 環境変数、./ffmpeg、PATH の順に検索）",
		"Metadata prober (ffmpeg or mp4).":                                                     "メタデータの解析方法（ffmpeg または mp4）",
		"Give up on a frame after this many milliseconds (0 = wait).":                          "フレーム読み込みを打ち切るまでのミリ秒（0 = 待機し続ける）",

		// Pacing
		"Step pacing (play or magic).":                        "ステップの進め方（play または magic）",
		"Play speed (0.07-2.0, 1.0 = 60 steps per second).":   "再生速度（0.07〜2.0、1.0 = 毎秒60ステップ）",
		"Magic mode step interval in milliseconds (1-10000).": "マジックモードのステップ間隔（ミリ秒、1〜10000）",
		"Seek to this offset in seconds before scanning.":     "スキャン前にこの秒数へシーク",
		"Stop after this many frames (0 = until the end).":    "このフレーム数で停止（0 = 最後まで）",

		// Report
		"Write a Markdown scan summary to this file.": "スキャン結果のMarkdownサマリーをこのファイルに書き出す",

		// Debug
		"Save every frame with the marker trail as PNG.": "マーカーの軌跡を描いた全フレームをPNGで保存",
		"Directory for debug output.":                    "デバッグ出力先ディレクトリ",
		"Scale factor for debug frames.":                 "デバッグフレームの拡大縮小率",

		// Logging
		"Log level (debug, info, warn, error).": "ログレベル（debug, info, warn, error）",
		"Suppress all log output.":              "すべてのログ出力を抑制",

		// Output
		"%s: %.2fs, %dx%d":      "%s: %.2f 秒, %dx%d",
		"cursorscan version %s": "cursorscan バージョン %s",
	})
}
