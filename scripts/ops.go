// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// ops 是取代 Makefile 的開發任務入口：
//
//	go run scripts/ops.go test        # 只顯示 ok / FAIL
//	go run scripts/ops.go test-all    # 全部測試 + cover
//	go run scripts/ops.go test-detail # -v，略過 [no test files]
//	go run scripts/ops.go serve       # 以 demo 設定啟動 cmd/svr
//	go run scripts/ops.go sample      # 以內嵌範例跑 cmd/slip
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/ops.go [test|test-all|test-detail|serve|sample]")
		os.Exit(1)
	}
	if err := selectTask(os.Args[1]); err != nil {
		red.Println(err)
		os.Exit(1)
	}
}

func selectTask(task string) error {
	switch task {
	case "test":
		green.Println("running tests")
		cleanCache()
		return stream(exec.Command("go", "test", "./...", "-cover", "-count=1"), onlyResults)
	case "test-all":
		green.Println("running tests (all with coverage)")
		cleanCache()
		return passthrough(exec.Command("go", "test", "./...", "-cover"))
	case "test-detail":
		green.Println("running tests (detail)")
		cleanCache()
		return stream(exec.Command("go", "test", "./...", "-v", "-count=1"), skipNoTests)
	case "serve":
		cmd := exec.Command("go", "run", "./cmd/svr", "-log-mode", "dev")
		cmd.Env = append(os.Environ(), "SLIPDESK_HISTORY_DSN=file:build/slipdesk.db")
		_ = os.MkdirAll("build", 0o755)
		return passthrough(cmd)
	case "sample":
		return passthrough(exec.Command("go", "run", "./cmd/slip", "-color", "always"))
	default:
		return fmt.Errorf("unknown task: %s", task)
	}
}

func cleanCache() {
	if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
		yellow.Println("go clean -testcache failed:", err)
	}
}

func passthrough(cmd *exec.Cmd) error {
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

// filter 回傳 false 時不印該行
type filter func(line string) bool

// onlyResults 等同 grep -E '^(ok|FAIL)'，另外保留編譯失敗的訊息
func onlyResults(line string) bool {
	return strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") ||
		strings.Contains(line, "build failed") || strings.Contains(line, "setup failed")
}

func skipNoTests(line string) bool {
	return !strings.Contains(line, "[no test files]")
}

// stream 合併 stdout/stderr，逐行過濾並上色
func stream(cmd *exec.Cmd, keep filter) error {
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error starting %s: %w", cmd.Path, err)
	}

	sc := bufio.NewScanner(pipe)
	for sc.Scan() {
		line := sc.Text()
		if !keep(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"):
			green.Println(line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "failed"):
			red.Println(line)
		default:
			fmt.Println(line)
		}
	}
	if err := sc.Err(); err != nil {
		yellow.Println("scanner error:", err)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("tests finished with errors: %w", err)
	}
	return nil
}
