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

package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/zintix-labs/slipdesk"
	"github.com/zintix-labs/slipdesk/catalog"
	"github.com/zintix-labs/slipdesk/config"
	"github.com/zintix-labs/slipdesk/demo"
	"github.com/zintix-labs/slipdesk/demo/demo_configs"
	"github.com/zintix-labs/slipdesk/history"
	"github.com/zintix-labs/slipdesk/ledger"
	"github.com/zintix-labs/slipdesk/server"
	"github.com/zintix-labs/slipdesk/server/logger"
	"github.com/zintix-labs/slipdesk/server/svrcfg"
)

// slipdesk HTTP 服務入口。
//
// 設定來源：-config 指定的 YAML（可省略）→ 環境變數 SLIPDESK_* → -log-mode 旗標。
// 沒有設定後端 URL 時使用記憶體後端與 demo 場次，方便本機開發。
func main() {
	path := flag.String("config", "", "path to YAML config file (env vars override)")
	mode := flag.String("log-mode", "", "override log mode: dev|prod|silence")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), config.Usage())
	}
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.LogMode = *mode
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	log, ah := logger.NewAsync(4096, cfg.Mode())
	ctx := context.Background()

	desk, err := buildDesk(ctx, cfg, log)
	if err != nil {
		log.Error("build desk failed", slog.Any("err", err))
		ah.Close()
		os.Exit(1)
	}

	err = server.Run(ctx, &svrcfg.SvrCfg{
		Log:      log,
		Addr:     cfg.Addr,
		Timeout:  cfg.Timeout,
		DevPanel: cfg.DevPanel,
		Desk:     desk,
	})
	if n := ah.Dropped(); n > 0 {
		fmt.Fprintf(os.Stderr, "dropped %d log records\n", n)
	}
	ah.Close()
	if err != nil {
		os.Exit(1)
	}
}

func buildDesk(ctx context.Context, cfg *config.Config, log *slog.Logger) (*slipdesk.Desk, error) {
	// 類型目錄：指定目錄時只讀該目錄，否則用內嵌的 demo 種子
	var seeds fs.FS = demo_configs.FS
	if cfg.Catalog.Dir != "" {
		seeds = os.DirFS(cfg.Catalog.Dir)
	}
	cat, err := catalog.New(seeds)
	if err != nil {
		return nil, err
	}
	if err := cat.LoadSeeds(); err != nil {
		return nil, err
	}

	opts := []slipdesk.Option{slipdesk.WithCatalog(cat), slipdesk.WithLogger(log)}

	remote := cfg.Backend.URL != ""
	if remote {
		hb, err := ledger.NewHTTPBackend(cfg.Backend.URL, cfg.Backend.Timeout,
			ledger.WithToken(cfg.Backend.Token),
			ledger.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, slipdesk.WithBackend(hb))
	} else {
		log.Warn("no backend url configured, using in-memory backend")
		opts = append(opts, slipdesk.WithBackend(demo.Backend(cat)))
	}

	if cfg.History.DSN != "" {
		journal, err := history.Open(ctx, cfg.History.DSN, history.WithLogger(log))
		if err != nil {
			return nil, err
		}
		opts = append(opts, slipdesk.WithJournal(journal))
	}

	desk, err := slipdesk.New(opts...)
	if err != nil {
		return nil, err
	}
	if remote && cfg.Catalog.Refresh {
		rctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		// 失敗時沿用種子目錄
		if _, err := desk.RefreshTypes(rctx); err != nil {
			log.Warn("initial types refresh failed, keeping seed catalog", slog.Any("err", err))
		}
	}
	return desk, nil
}
