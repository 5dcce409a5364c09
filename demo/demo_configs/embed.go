package demo_configs

import (
	"embed"
)

// FS 內含預設的類型種子檔（*.yaml）與範例投注單（*.txt）。目錄是平的，catalog 只會讀 yaml/json。
//
//go:embed *.yaml *.txt
var FS embed.FS
