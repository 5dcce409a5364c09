package netsvr

import (
	"net/http"

	"github.com/zintix-labs/slipdesk/server/app"
)

// NetSvr 是可被 app 管理啟停的路由器。
type NetSvr interface {
	NetRouter
	app.Component
	Address() string
}

// NetRouter 定義純路由行為，讓子模組只操作路由而不持有啟停控制權。
// Group 回呼只會拿到 NetRouter，看不到 Run/Shutdown。
type NetRouter interface {
	// middleware
	Use(middleware func(http.Handler) http.Handler)

	// 註冊路由
	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	// 群組路由
	Group(path string, fn func(NetRouter))
}
