// paibanctl 排班引擎命令行入口
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/paiban/engine/internal/config"
	"github.com/paiban/engine/internal/metrics"
	"github.com/paiban/engine/pkg/engine"
	"github.com/paiban/engine/pkg/logger"
	"github.com/paiban/engine/pkg/model"
	"github.com/paiban/engine/pkg/resourcegate"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "加载配置失败:", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Level: cfg.App.LogLevel, Format: "console"})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var cmdErr error
	switch os.Args[1] {
	case "solve":
		cmdErr = runSolve(os.Args[2:])
	case "estimate":
		cmdErr = runEstimate(os.Args[2:])
	case "validate-pattern":
		cmdErr = runValidatePattern(os.Args[2:])
	case "cache":
		cmdErr = runCache(os.Args[2:])
	case "version", "-version", "--version":
		fmt.Printf("paibanctl %s (build %s, commit %s)\n", Version, BuildTime, GitCommit)
		return
	default:
		usage()
		os.Exit(1)
	}

	if cmdErr != nil {
		fmt.Fprintln(os.Stderr, "错误:", cmdErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `用法: paibanctl <command> [参数]

命令:
  solve             求解一个排班问题
  estimate          估算问题规模与是否可求解
  validate-pattern  独立校验一个循环班表的可行性
  cache             操作严格遵从率缓存
  version           打印版本信息`)
}

// runSolve 实现 `paibanctl solve -in problem.json -out result.json [-cache ratio.json]`。
func runSolve(args []string) error {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	in := fs.String("in", "", "问题文档路径（必填）")
	out := fs.String("out", "", "结果文档输出路径，留空写到标准输出")
	cachePath := fs.String("cache", "", "遵从率缓存路径，留空禁用缓存")
	tier := fs.String("tier", "", "主机容量档位 small|medium|large，留空按 medium 处理")
	metricsAddr := fs.String("metrics-addr", "", "调试用途，留空不启动；非空时在该地址暴露 /metrics 供本地排查")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("必须提供 -in")
	}

	problem, err := readProblem(*in)
	if err != nil {
		return err
	}

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		server := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Get().Warn().Err(err).Msg("指标调试端口退出")
			}
		}()
		defer server.Close()
	}

	// 优雅取消：收到 SIGINT/SIGTERM 时取消求解上下文，而不是直接杀死进程——
	// 求解驱动会把正在进行的求解标记为 CANCELLED 并返回部分结果。
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info().Msg("收到终止信号，正在取消求解...")
		cancel()
	}()

	result, err := engine.Solve(ctx, problem, engine.Options{
		CachePath: *cachePath,
		Tier:      resourcegate.Tier(*tier),
	})
	if err != nil {
		return err
	}

	return writeJSON(*out, result)
}

// runEstimate 实现 `paibanctl estimate -in problem.json [-tier medium]`。
func runEstimate(args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	in := fs.String("in", "", "问题文档路径（必填）")
	tier := fs.String("tier", "", "主机容量档位 small|medium|large，留空按 medium 处理")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("必须提供 -in")
	}

	problem, err := readProblem(*in)
	if err != nil {
		return err
	}

	report := engine.EstimateComplexity(problem, resourcegate.Tier(*tier))
	return writeJSON("", report)
}

// runValidatePattern 实现
// `paibanctl validate-pattern -pattern DDDDDOO -scheme A [-shift-hours 8]`。
func runValidatePattern(args []string) error {
	fs := flag.NewFlagSet("validate-pattern", flag.ExitOnError)
	patternRaw := fs.String("pattern", "", "循环班表，逗号分隔的班次代码，或单字符代码连写，如 DDDDDOO（必填）")
	schemeRaw := fs.String("scheme", "", "方案 A|B|P（必填）")
	shiftHours := fs.Float64("shift-hours", 0, "班次净工时，留空按默认净工时（11 小时）处理")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *patternRaw == "" || *schemeRaw == "" {
		return fmt.Errorf("必须提供 -pattern 与 -scheme")
	}

	scheme, ok := model.NormalizeScheme(*schemeRaw)
	if !ok {
		return fmt.Errorf("无法识别的方案: %s", *schemeRaw)
	}

	result := engine.ValidatePattern(parsePattern(*patternRaw), scheme, *shiftHours)
	return writeJSON("", result)
}

// parsePattern 把命令行传入的班表字符串解析为 WorkPattern：含逗号时按逗号
// 切分（支持多字符班次代码），否则把每个字符当作一个单字符班次代码。
func parsePattern(raw string) model.WorkPattern {
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		pattern := make(model.WorkPattern, len(parts))
		for i, p := range parts {
			pattern[i] = strings.TrimSpace(p)
		}
		return pattern
	}
	runes := []rune(raw)
	pattern := make(model.WorkPattern, len(runes))
	for i, r := range runes {
		pattern[i] = string(r)
	}
	return pattern
}

// runCache 实现 `paibanctl cache stats|list|export|import|invalidate|clear -cache ratio.json`。
func runCache(args []string) error {
	fs := flag.NewFlagSet("cache", flag.ExitOnError)
	cachePath := fs.String("cache", "", "遵从率缓存路径（必填）")
	hash := fs.String("hash", "", "invalidate 子操作所需的模式哈希")
	file := fs.String("file", "", "export/import 子操作的数据文件路径，留空用标准输出/标准输入")
	if len(args) == 0 {
		return fmt.Errorf("必须指定子操作：stats|list|export|import|invalidate|clear")
	}
	action := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *cachePath == "" {
		return fmt.Errorf("必须提供 -cache")
	}

	store, err := engine.OpenCache(*cachePath)
	if err != nil {
		return err
	}

	switch action {
	case "stats":
		stats, err := store.Stats()
		if err != nil {
			return err
		}
		return writeJSON("", stats)
	case "list":
		entries, err := store.List()
		if err != nil {
			return err
		}
		return writeJSON("", entries)
	case "export":
		data, err := store.Export()
		if err != nil {
			return err
		}
		return writeBytes(*file, data)
	case "import":
		data, err := readBytes(*file)
		if err != nil {
			return err
		}
		return store.Import(data)
	case "invalidate":
		if *hash == "" {
			return fmt.Errorf("invalidate 必须提供 -hash")
		}
		return store.Invalidate(*hash)
	case "clear":
		return store.Clear()
	default:
		return fmt.Errorf("未知的 cache 子操作: %s", action)
	}
}

func readProblem(path string) (model.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Problem{}, fmt.Errorf("读取问题文档失败: %w", err)
	}
	var problem model.Problem
	if err := json.Unmarshal(data, &problem); err != nil {
		return model.Problem{}, fmt.Errorf("解析问题文档失败: %w", err)
	}
	return problem, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化输出失败: %w", err)
	}
	return writeBytes(path, data)
}

func writeBytes(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readBytes(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
