package router

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// APIPrefix 所有业务模块挂载的路径前缀.
const APIPrefix = "/api/v1"

// Registrar 业务模块在 /api/v1 分组下注册自己的路由.
type Registrar interface{ Register(g *gin.RouterGroup) }

var (
	mu         sync.Mutex
	registrars []Registrar
)

// Register 向全局注册表中注册模块
func Register(rs ...Registrar) {
	mu.Lock()
	defer mu.Unlock()
	registrars = append(registrars, rs...)
}

// Mount 将已注册模块挂载到 r, 返回挂载的模块数量.
func Mount(r *gin.Engine) int {
	mu.Lock()
	defer mu.Unlock()
	g := r.Group(APIPrefix)
	for _, rg := range registrars {
		rg.Register(g)
	}
	return len(registrars)
}

// Reset 清空注册表.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registrars = nil
}
