// Package filestore 实现严格遵从率缓存的强制性后端：一份 JSON 文档，写
// 入期间持有独占文件锁，读取失败时重试，镜像教师数据库事务的
// 读-改-写-带回滚纪律，但把 SQL 事务换成文件锁保护的 JSON 读改写。
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paiban/engine/pkg/logger"
	"github.com/paiban/engine/pkg/ratiocache"
)

const currentVersion = 1

// document 是磁盘上的 JSON 文档形状：{version, entries}。
type document struct {
	Version int                        `json:"version"`
	Entries map[string]ratiocache.Entry `json:"entries"`
}

// Store 是文件支持的缓存实现；单个 JSON 文档加同目录下的 `.lock` 哨兵文件
// 互斥并发写入。所有写操作都是完整的读-改-写，绝不做增量 patch。
type Store struct {
	path     string
	lockPath string
}

// New 打开（或在不存在时创建）path 处的缓存文件。
func New(path string) (*Store, error) {
	s := &Store{path: path, lockPath: path + ".lock"}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeDocument(document{Version: currentVersion, Entries: map[string]ratiocache.Entry{}}); err != nil {
			return nil, fmt.Errorf("初始化遵从率缓存文件失败: %w", err)
		}
	}
	return s, nil
}

func (s *Store) Lookup(hash string) (ratiocache.Entry, bool, error) {
	doc, err := s.readDocument()
	if err != nil {
		return ratiocache.Entry{}, false, err
	}
	e, ok := doc.Entries[hash]
	return e, ok, nil
}

func (s *Store) Upsert(hash string, entry ratiocache.Entry) error {
	return s.withLock(func() error {
		doc, err := s.readDocumentLocked()
		if err != nil {
			return err
		}
		if existing, ok := doc.Entries[hash]; ok {
			entry.UsageCount = existing.UsageCount + 1
		} else {
			entry.UsageCount = 1
		}
		entry.LastUpdated = time.Now()
		doc.Entries[hash] = entry
		logger.Info().
			Str("hash", hash).
			Float64("ratio", entry.OptimalRatio).
			Int("usage_count", entry.UsageCount).
			Msg("遵从率缓存写入")
		return s.writeDocumentLocked(doc)
	})
}

func (s *Store) Stats() (ratiocache.Stats, error) {
	doc, err := s.readDocument()
	if err != nil {
		return ratiocache.Stats{}, err
	}
	stats := ratiocache.Stats{EntryCount: len(doc.Entries)}
	for _, e := range doc.Entries {
		stats.TotalUsage += e.UsageCount
	}
	return stats, nil
}

func (s *Store) List() (map[string]ratiocache.Entry, error) {
	doc, err := s.readDocument()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

func (s *Store) Export() ([]byte, error) {
	doc, err := s.readDocument()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (s *Store) Import(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("导入遵从率缓存失败: %w", err)
	}
	if doc.Entries == nil {
		doc.Entries = map[string]ratiocache.Entry{}
	}
	doc.Version = currentVersion
	return s.withLock(func() error { return s.writeDocumentLocked(doc) })
}

func (s *Store) Invalidate(hash string) error {
	return s.withLock(func() error {
		doc, err := s.readDocumentLocked()
		if err != nil {
			return err
		}
		delete(doc.Entries, hash)
		return s.writeDocumentLocked(doc)
	})
}

func (s *Store) Clear() error {
	return s.withLock(func() error {
		return s.writeDocumentLocked(document{Version: currentVersion, Entries: map[string]ratiocache.Entry{}})
	})
}

// withLock 以独占锁执行 fn：通过排他创建哨兵锁文件模拟 flock，失败时
// 退避重试，持锁期间完成完整的读-改-写。
func (s *Store) withLock(fn func() error) error {
	deadline := time.Now().Add(5 * time.Second)
	backoff := 5 * time.Millisecond
	for {
		lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			lock.Close()
			break
		}
		if !os.IsExist(err) {
			return fmt.Errorf("获取遵从率缓存文件锁失败: %w", err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("获取遵从率缓存文件锁超时: %s", s.lockPath)
		}
		time.Sleep(backoff)
		if backoff < 100*time.Millisecond {
			backoff *= 2
		}
	}
	defer os.Remove(s.lockPath)
	return fn()
}

func (s *Store) readDocument() (document, error) {
	var doc document
	err := s.withLock(func() error {
		d, rerr := s.readDocumentLocked()
		doc = d
		return rerr
	})
	return doc, err
}

// readDocumentLocked 读取文档；遇到截断或校验失败的写入（进程在写入中途
// 崩溃）时重试一次而不是直接失败，镜像教师事务层的乐观重试纪律。
func (s *Store) readDocumentLocked() (document, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return document{}, fmt.Errorf("读取遵从率缓存文件失败: %w", err)
		}
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			lastErr = err
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if doc.Entries == nil {
			doc.Entries = map[string]ratiocache.Entry{}
		}
		return doc, nil
	}
	return document{}, fmt.Errorf("遵从率缓存文件内容损坏: %w", lastErr)
}

func (s *Store) writeDocumentLocked(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化遵从率缓存失败: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("创建遵从率缓存目录失败: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("写入遵从率缓存临时文件失败: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("替换遵从率缓存文件失败: %w", err)
	}
	return nil
}

func (s *Store) writeDocument(doc document) error {
	return s.withLock(func() error { return s.writeDocumentLocked(doc) })
}
