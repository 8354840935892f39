// Package pgstore 实现严格遵从率缓存的可选 Postgres 后端，供多进程部署
// 共享同一份缓存；沿用教师 internal/database 的连接池与慢查询日志纪律，
// 但服务于缓存读改写而非排班/员工持久化。
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/paiban/engine/pkg/logger"
	"github.com/paiban/engine/pkg/ratiocache"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS ratio_cache_entries (
	pattern_hash   TEXT PRIMARY KEY,
	optimal_ratio  DOUBLE PRECISION NOT NULL,
	employees_used INTEGER NOT NULL,
	last_updated   TIMESTAMPTZ NOT NULL,
	usage_count    INTEGER NOT NULL DEFAULT 1,
	metadata       JSONB
)`

// Store 是 Postgres 支持的遵从率缓存实现。
type Store struct {
	db *sql.DB
}

// Open 连接到 dsn 指向的 Postgres 实例并确保缓存表存在。
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开遵从率缓存数据库连接失败: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("遵从率缓存数据库连接测试失败: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化遵从率缓存表失败: %w", err)
	}

	logger.Info().Msg("遵从率缓存 Postgres 后端已连接")
	return &Store{db: db}, nil
}

// Close 关闭底层数据库连接池。
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Lookup(hash string) (ratiocache.Entry, bool, error) {
	row := s.db.QueryRow(`SELECT optimal_ratio, employees_used, last_updated, usage_count, metadata
		FROM ratio_cache_entries WHERE pattern_hash = $1`, hash)

	var e ratiocache.Entry
	var metaJSON []byte
	if err := row.Scan(&e.OptimalRatio, &e.EmployeesUsed, &e.LastUpdated, &e.UsageCount, &metaJSON); err != nil {
		if err == sql.ErrNoRows {
			return ratiocache.Entry{}, false, nil
		}
		return ratiocache.Entry{}, false, fmt.Errorf("查询遵从率缓存失败: %w", err)
	}
	if len(metaJSON) > 0 {
		_ = json.Unmarshal(metaJSON, &e.Metadata)
	}
	return e, true, nil
}

func (s *Store) Upsert(hash string, entry ratiocache.Entry) error {
	metaJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("序列化遵从率缓存元数据失败: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO ratio_cache_entries (pattern_hash, optimal_ratio, employees_used, last_updated, usage_count, metadata)
		VALUES ($1, $2, $3, now(), 1, $4)
		ON CONFLICT (pattern_hash) DO UPDATE SET
			optimal_ratio  = EXCLUDED.optimal_ratio,
			employees_used = EXCLUDED.employees_used,
			last_updated   = now(),
			usage_count    = ratio_cache_entries.usage_count + 1,
			metadata       = EXCLUDED.metadata`,
		hash, entry.OptimalRatio, entry.EmployeesUsed, metaJSON)
	if err != nil {
		return fmt.Errorf("写入遵从率缓存失败: %w", err)
	}
	return nil
}

func (s *Store) Stats() (ratiocache.Stats, error) {
	var stats ratiocache.Stats
	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(usage_count), 0) FROM ratio_cache_entries`)
	if err := row.Scan(&stats.EntryCount, &stats.TotalUsage); err != nil {
		return ratiocache.Stats{}, fmt.Errorf("查询遵从率缓存统计失败: %w", err)
	}
	return stats, nil
}

func (s *Store) List() (map[string]ratiocache.Entry, error) {
	rows, err := s.db.Query(`SELECT pattern_hash, optimal_ratio, employees_used, last_updated, usage_count, metadata FROM ratio_cache_entries`)
	if err != nil {
		return nil, fmt.Errorf("枚举遵从率缓存失败: %w", err)
	}
	defer rows.Close()

	out := map[string]ratiocache.Entry{}
	for rows.Next() {
		var hash string
		var e ratiocache.Entry
		var metaJSON []byte
		if err := rows.Scan(&hash, &e.OptimalRatio, &e.EmployeesUsed, &e.LastUpdated, &e.UsageCount, &metaJSON); err != nil {
			return nil, fmt.Errorf("读取遵从率缓存行失败: %w", err)
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &e.Metadata)
		}
		out[hash] = e
	}
	return out, rows.Err()
}

func (s *Store) Export() ([]byte, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(struct {
		Version int                         `json:"version"`
		Entries map[string]ratiocache.Entry `json:"entries"`
	}{Version: 1, Entries: entries}, "", "  ")
}

func (s *Store) Import(data []byte) error {
	var doc struct {
		Entries map[string]ratiocache.Entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("解析导入的遵从率缓存失败: %w", err)
	}
	for hash, entry := range doc.Entries {
		if err := s.Upsert(hash, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Invalidate(hash string) error {
	_, err := s.db.Exec(`DELETE FROM ratio_cache_entries WHERE pattern_hash = $1`, hash)
	if err != nil {
		return fmt.Errorf("失效遵从率缓存条目失败: %w", err)
	}
	return nil
}

func (s *Store) Clear() error {
	_, err := s.db.Exec(`TRUNCATE TABLE ratio_cache_entries`)
	if err != nil {
		return fmt.Errorf("清空遵从率缓存失败: %w", err)
	}
	return nil
}
