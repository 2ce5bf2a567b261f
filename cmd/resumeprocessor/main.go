package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"interview-prep-go/internal/config"
	appCoreLogger "interview-prep-go/internal/logger"
	"interview-prep-go/internal/processor"

	"github.com/spf13/pflag"
)

// 命令行参数定义
var (
	files       = pflag.StringArrayP("file", "f", nil, "简历文件路径，可重复指定 (必填)")
	withKeyInfo = pflag.Bool("keyinfo", false, "同时提取技能、经历、教育等关键信息")
	format      = pflag.String("format", "text", "输出格式，可选项：text, json")
	maxLen      = pflag.Int("maxlen", 1000, "text 格式下显示的文本最大长度，设为-1显示全部")
	workers     = pflag.Int("workers", 4, "并发解析的文件数")
	configPath  = pflag.StringP("config", "c", "", "配置文件路径，为空时使用默认配置")
)

func main() {
	pflag.Parse()

	if len(*files) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 必须提供至少一个简历文件。使用 --file 参数。")
		pflag.Usage()
		os.Exit(2)
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(os.Stderr, "错误: 未知输出格式 '%s'。支持: text, json\n", *format)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	// 命令行工具只输出警告以上的日志，避免干扰结果
	appCoreLogger.InitWithWriter(appCoreLogger.Config{Level: "warn", Format: "pretty"}, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := processor.NewResumeProcessor(cfg.Resume)
	results := processFiles(ctx, p, *files, *withKeyInfo, *workers)

	if err := render(os.Stdout, results, *format, *maxLen); err != nil {
		fmt.Fprintf(os.Stderr, "输出结果失败: %v\n", err)
		os.Exit(1)
	}

	for _, r := range results {
		if r.Err != nil {
			os.Exit(1)
		}
	}
}
