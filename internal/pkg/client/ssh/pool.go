package ssh

import (
	"context"
	"fmt"
	"sync"

	xssh "golang.org/x/crypto/ssh"
	"golang.org/x/sync/singleflight"
)

// DialFunc 建立到 host 的 SSH 连接.
type DialFunc func(ctx context.Context, host string) (*xssh.Client, error)

// Pool 按主机名缓存 SSH 连接.
// 该结构为并发安全:
// - 使用读写锁保护对内部 map 的访问;
// - 使用 singleflight 保证同一主机的连接只会建立一次.
type Pool struct {
	mu   sync.RWMutex
	g    singleflight.Group
	pool map[string]*xssh.Client
	dial DialFunc
}

func NewPool(dial DialFunc) *Pool {
	return &Pool{
		pool: make(map[string]*xssh.Client),
		dial: dial,
	}
}

// FetchOrCreate 获取 host 对应的连接, 若不存在则建立并放入池中.
func (p *Pool) FetchOrCreate(ctx context.Context, host string) (*xssh.Client, error) {
	if host == "" {
		return nil, fmt.Errorf("参数 host 不能为空")
	}

	// 快路径: 已存在则直接返回
	p.mu.RLock()
	if c, ok := p.pool[host]; ok && c != nil {
		p.mu.RUnlock()
		return c, nil
	}
	p.mu.RUnlock()

	v, err, _ := p.g.Do(host, func() (any, error) {
		// 双检, 避免等待期间已被其他协程创建
		p.mu.RLock()
		if c, ok := p.pool[host]; ok && c != nil {
			p.mu.RUnlock()
			return c, nil
		}
		p.mu.RUnlock()

		c, err := p.dial(ctx, host)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		if p.pool == nil {
			p.pool = make(map[string]*xssh.Client)
		}
		p.pool[host] = c
		p.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*xssh.Client), nil
}

// Evict 移除失效连接. 仅当池中仍是同一连接时才移除, 避免误删其他协程新建的连接.
func (p *Pool) Evict(host string, c *xssh.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur, ok := p.pool[host]; ok && cur == c {
		delete(p.pool, host)
		if c != nil && c.Conn != nil {
			_ = c.Close()
		}
	}
}

// Close 关闭池中全部连接.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for host, c := range p.pool {
		if c != nil && c.Conn != nil {
			_ = c.Close()
		}
		delete(p.pool, host)
	}
}
