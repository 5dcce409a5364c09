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

// Package perf 把一段執行包上 pprof，輸出到 Dir（預設 build/profiling）。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/slipdesk/errs"
)

// Dir 是 pprof 檔案寫入路徑
var Dir = "build/profiling"

// Modes 是 RunPProf 接受的 mode；空字串代表不做 profiling。
var Modes = []string{"", "cpu", "heap", "allocs"}

// RunPProf 根據 mode 決定執行哪種 Profiling；未知的 mode 回傳 errs.Warn 且不執行 exe。
//
// Usage like:
//
//	go run ./cmd/slip -p cpu slips/*.txt
func RunPProf(exe func(), mode string) error {
	switch mode {
	case "":
		exe()
		return nil
	case "cpu":
		return PProfCPU(exe)
	case "heap":
		return snapshot(exe, "heap")
	case "allocs":
		return snapshot(exe, "allocs")
	default:
		return errs.Warnf("unknown pprof mode %q: want cpu, heap or allocs", mode)
	}
}

// PProfCPU 對 exe 做 CPU profiling，輸出 cpu.pprof；也可以拿來做 pgo 的 profile。
func PProfCPU(exe func()) error {
	f, err := create("cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "failed to start pprof")
	}
	defer pprof.StopCPUProfile()

	exe()
	return nil
}

// snapshot 在 exe() 執行完後寫出一次 heap（in-use）或 allocs（累積配置）快照。
// 寫出前先 runtime.GC()，讓 live objects 貼近最新狀態。
func snapshot(exe func(), name string) error {
	exe()

	runtime.GC()
	f, err := create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.NewFatal("unknown profile " + name)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "failed to write "+name+" profile")
	}
	return nil
}

func create(name string) (*os.File, error) {
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "failed to create profiling dir")
	}
	f, err := os.Create(filepath.Join(Dir, name+".pprof"))
	if err != nil {
		return nil, errs.Wrap(err, "failed to create "+name+".pprof")
	}
	return f, nil
}
