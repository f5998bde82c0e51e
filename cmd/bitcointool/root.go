package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/santos177/libbtc/internal/chain"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	Testnet bool // 使用测试网
	Regtest bool // 使用回归测试网
	Verbose bool // 输出调试日志
}

var (
	globalFlags  GlobalFlags
	activeParams *chaincfg.Params
	logger       zerolog.Logger
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "bitcointool",
	Short: "比特币密钥与交易签名命令行工具",
	Long: `bitcointool - 密钥管理与交易签名工具

单次调用完成一项操作：
- 生成私钥（genkey）、从私钥推导公钥与地址（pubfrompriv / addrfrompub）
- BIP32 主密钥生成与子密钥派生（hdgenmaster / hdprintkey / hdderive）
- 对单个交易输入计算签名哈希并签名（sign）
- 签名格式转换（comp2der）、扩展密钥网络转换（bip32maintotest）

示例:
  bitcointool genkey --testnet
  bitcointool pubfrompriv -p KzLzeMteBxy8aPPDCeroWdkYPctafGapqBAmWQwdvCkgKniH9zw6
  bitcointool hdderive -p <xprv> -m "m/0'/[0-4]/1"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if globalFlags.Verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()

		activeParams = chain.Select(globalFlags.Testnet, globalFlags.Regtest)
		logger.Debug().Str("network", activeParams.Name).Msg("network selected")
	},
}

// Execute 执行根命令
//
// 失败时在标准输出打印单行 Error 信息并以非零码退出。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Testnet, "testnet", "t", false, "使用测试网参数")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Regtest, "regtest", "r", false, "使用回归测试网参数")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Verbose, "verbose", false, "输出调试日志")
}
