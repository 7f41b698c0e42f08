package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"sync"

	oaerrors "github.com/go-openapi/errors"
	"github.com/spf13/viper"
)

const (
	keyClusters        = "clusters"
	keyRecentJobsCount = "recent_jobs_count"
	keyRefreshInterval = "refresh_interval"
	// keyServers 旧版配置文档中集群列表的键名, 仅在没有 clusters 时读取, 下次写入时迁移为 clusters.
	keyServers = "servers"

	MinRecentJobs = 1
	MaxRecentJobs = 50
)

var (
	// DefaultClusters 配置文件缺失时监控的集群(~/.ssh/config 中的主机别名).
	DefaultClusters = []string{"juwels", "ferranti"}
	// RefreshIntervals 前端可选的自动刷新间隔(秒), 0 表示关闭.
	RefreshIntervals = []int{0, 5, 10, 30, 60}

	clusterNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// Config 配置文档.
type Config struct {
	Clusters        []string `json:"clusters" mapstructure:"clusters"`
	RecentJobsCount int      `json:"recent_jobs_count" mapstructure:"recent_jobs_count"`
	RefreshInterval int      `json:"refresh_interval" mapstructure:"refresh_interval"`
}

// Patch 部分更新, nil 字段保持不变.
type Patch struct {
	Clusters        []string `json:"clusters,omitempty"`
	RecentJobsCount *int     `json:"recent_jobs_count,omitempty"`
	RefreshInterval *int     `json:"refresh_interval,omitempty"`
}

func Default() Config {
	return Config{
		Clusters:        slices.Clone(DefaultClusters),
		RecentJobsCount: 5,
		RefreshInterval: 10,
	}
}

// HasCluster 判断 name 是否为已配置的集群.
func (c Config) HasCluster(name string) bool {
	return slices.Contains(c.Clusters, name)
}

// Validate 校验全部字段, 返回 *errors.CompositeError.
func (c Config) Validate() error {
	var res []error
	res = append(res, validateClusters(c.Clusters)...)
	if err := validateRecentJobs(c.RecentJobsCount); err != nil {
		res = append(res, err)
	}
	if err := validateRefreshInterval(c.RefreshInterval); err != nil {
		res = append(res, err)
	}
	if len(res) > 0 {
		return oaerrors.CompositeValidationError(res...)
	}
	return nil
}

func validateClusters(clusters []string) []error {
	if len(clusters) == 0 {
		return []error{oaerrors.Required(keyClusters, "body", clusters)}
	}
	var res []error
	seen := make(map[string]struct{}, len(clusters))
	for i, name := range clusters {
		field := fmt.Sprintf("%s.%d", keyClusters, i)
		if !clusterNamePattern.MatchString(name) {
			res = append(res, oaerrors.FailedPattern(field, "body", clusterNamePattern.String(), name))
			continue
		}
		if _, ok := seen[name]; ok {
			res = append(res, oaerrors.DuplicateItems(keyClusters, "body"))
			continue
		}
		seen[name] = struct{}{}
	}
	return res
}

func validateRecentJobs(n int) error {
	if n < MinRecentJobs {
		return oaerrors.ExceedsMinimum(keyRecentJobsCount, "body", MinRecentJobs, false, n)
	}
	if n > MaxRecentJobs {
		return oaerrors.ExceedsMaximum(keyRecentJobsCount, "body", MaxRecentJobs, false, n)
	}
	return nil
}

func validateRefreshInterval(n int) error {
	if slices.Contains(RefreshIntervals, n) {
		return nil
	}
	values := make([]interface{}, 0, len(RefreshIntervals))
	for _, v := range RefreshIntervals {
		values = append(values, v)
	}
	return oaerrors.EnumFail(keyRefreshInterval, "body", n, values)
}

// Store 基于 viper 的配置文档存储. 每次读取都重新加载文件, 外部修改立即生效.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string { return s.path }

// Load 读取配置. 文件缺失或无法解析时返回默认值, 缺失或非法的字段逐个回落到默认值.
func (s *Store) Load() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() Config {
	def := Default()
	v := s.viper()
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("unable to read config document, using defaults", "path", s.path, "err", err)
		}
		return def
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		s.logger.Warn("unable to decode config document, using defaults", "path", s.path, "err", err)
		return def
	}
	if !v.InConfig(keyClusters) && v.InConfig(keyServers) {
		cfg.Clusters = v.GetStringSlice(keyServers)
	}
	if len(validateClusters(cfg.Clusters)) > 0 {
		s.logger.Warn("invalid clusters in config document, using defaults", "path", s.path, "clusters", cfg.Clusters)
		cfg.Clusters = def.Clusters
	}
	if validateRecentJobs(cfg.RecentJobsCount) != nil {
		cfg.RecentJobsCount = def.RecentJobsCount
	}
	if validateRefreshInterval(cfg.RefreshInterval) != nil {
		cfg.RefreshInterval = def.RefreshInterval
	}
	return cfg
}

// Update 合并 p 到当前配置, 校验通过后写回文件. 校验失败时不修改文件.
func (s *Store) Update(p Patch) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.load()
	if p.Clusters != nil {
		cfg.Clusters = slices.Clone(p.Clusters)
	}
	if p.RecentJobsCount != nil {
		cfg.RecentJobsCount = *p.RecentJobsCount
	}
	if p.RefreshInterval != nil {
		cfg.RefreshInterval = *p.RefreshInterval
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	v := s.viper()
	v.Set(keyClusters, cfg.Clusters)
	v.Set(keyRecentJobsCount, cfg.RecentJobsCount)
	v.Set(keyRefreshInterval, cfg.RefreshInterval)
	if err := v.WriteConfigAs(s.path); err != nil {
		s.logger.Error("unable to write config document", "path", s.path, "err", err)
		return Config{}, fmt.Errorf("unable to write config document(%s): %w", s.path, err)
	}
	s.logger.Info("config document updated", "path", s.path, "clusters", cfg.Clusters, "recent_jobs_count", cfg.RecentJobsCount, "refresh_interval", cfg.RefreshInterval)
	return cfg, nil
}

func (s *Store) viper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	def := Default()
	v.SetDefault(keyClusters, def.Clusters)
	v.SetDefault(keyRecentJobsCount, def.RecentJobsCount)
	v.SetDefault(keyRefreshInterval, def.RefreshInterval)
	return v
}

