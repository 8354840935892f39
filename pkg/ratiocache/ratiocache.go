// Package ratiocache 定义严格遵从率自动搜索结果的持久化缓存接口，使同一
// 循环班表无需在每次求解时重新扫描整个比例区间。
package ratiocache

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/paiban/engine/pkg/model"
)

// Entry 是针对一个模式哈希缓存的一次自动搜索结果。
type Entry struct {
	OptimalRatio  float64           `json:"optimal_ratio"`
	EmployeesUsed int               `json:"employees_used"`
	LastUpdated   time.Time         `json:"last_updated"`
	UsageCount    int               `json:"usage_count"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Stats 汇总缓存的整体使用情况，供 CLI 的 cache stats 子命令展示。
type Stats struct {
	EntryCount    int `json:"entry_count"`
	TotalUsage    int `json:"total_usage"`
}

// Store 是严格遵从率缓存的存储接口；filestore 与 pgstore 各自提供一个
// 满足该接口的实现，求解驱动对使用哪个后端无感知。
type Store interface {
	Lookup(hash string) (Entry, bool, error)
	Upsert(hash string, entry Entry) error
	Stats() (Stats, error)
	List() (map[string]Entry, error)
	Export() ([]byte, error)
	Import(data []byte) error
	Invalidate(hash string) error
	Clear() error
}

// ComputePatternHash 对一条需求的循环班表计算稳定的 64 位十六进制摘要，
// 覆盖班表字母序列、长度与按班次代码排序后的班次构成——不含员工身份或
// 具体日期，使同一形状的循环班表在不同问题间复用同一缓存条目。
func ComputePatternHash(pattern model.WorkPattern) string {
	letters := strings.Join([]string(pattern), ",")

	counts := map[string]int{}
	for _, code := range pattern {
		if code == "" || code == "O" {
			continue
		}
		counts[code]++
	}
	codes := make([]string, 0, len(counts))
	for c := range counts {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	var composition strings.Builder
	for _, c := range codes {
		fmt.Fprintf(&composition, "%s:%d;", c, counts[c])
	}

	canonical := fmt.Sprintf("%s|%d|%s", letters, len(pattern), composition.String())

	h := fnv.New64a()
	_, _ = h.Write([]byte(canonical))
	return fmt.Sprintf("%016x", h.Sum64())
}
