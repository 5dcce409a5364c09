package main

import (
	"fmt"
	"os"

	"github.com/zintix-labs/slipdesk/perf"
)

// batch runner：正規化、解析並標示投注單檔案，最後輸出彙整報表
func main() {
	bindVar()
	var err error
	if perr := perf.RunPProf(func() { err = run(os.Stdout, os.Stdin) }, cfg.pprofmode); perr != nil {
		err = perr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
