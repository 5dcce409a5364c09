package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/zintix-labs/slipdesk/demo"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/server"
)

// 以 demo 設定（內嵌目錄、記憶體後端、無 journal）啟動服務，並在可連線後打開 /dev 面板。
func main() {
	noBrowser := flag.Bool("no-browser", false, "do not open the browser")
	flag.Parse()

	scfg, err := demo.NewServerConfig()
	if err != nil {
		slog.Error("set server configs error", slog.Any("err", err))
		os.Exit(1)
	}
	scfg.Addr = "127.0.0.1:5808"

	if !*noBrowser {
		go func() {
			// 等 server 真的在 listen 再開瀏覽器
			if err := waitForTCP(scfg.Addr, 5*time.Second); err != nil {
				scfg.Log.Error("dev server not ready", slog.Any("err", err))
				return
			}
			if err := openBrowser("http://" + scfg.Addr + "/dev"); err != nil {
				scfg.Log.Warn("open browser failed", slog.Any("err", err))
			}
		}()
	}
	if err := server.Run(context.Background(), scfg); err != nil {
		os.Exit(1)
	}
}

func waitForTCP(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return errs.NewFatal("timeout waiting for " + addr)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
