package jobpath

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// document 持久化文档结构: cluster -> job id -> Entry.
type document map[string]map[string]Entry

// FileStore 将全部集群的缓存保存在一个 JSON 文档中.
// 每次修改都在同一把锁内完成 读取-合并-写入, 写入先落临时文件再 rename.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Get(_ context.Context, cluster, jobID string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.load()[cluster][jobID]
	return e, !e.Empty(), nil
}

func (s *FileStore) Merge(_ context.Context, cluster, jobID string, e Entry) (MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	if doc[cluster] == nil {
		doc[cluster] = make(map[string]Entry)
	}
	merged := doc[cluster][jobID].Merge(e)
	doc[cluster][jobID] = merged

	if err := s.save(doc); err != nil {
		s.logger.Warn("unable to persist job path cache", "path", s.path, "cluster", cluster, "jobid", jobID, "err", err)
		return MergeResult{Entry: merged}, err
	}
	return MergeResult{Entry: merged, Persisted: true}, nil
}

// load 读取文档. 文件不存在或内容损坏时均视为空文档.
func (s *FileStore) load() document {
	doc := make(document)
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("unable to read job path cache, treating as empty", "path", s.path, "err", err)
		}
		return doc
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		s.logger.Warn("job path cache is corrupt, treating as empty", "path", s.path, "err", err)
		return make(document)
	}
	return doc
}

func (s *FileStore) save(doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode job path cache: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("unable to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("unable to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("unable to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("unable to replace %s: %w", s.path, err)
	}
	return nil
}
