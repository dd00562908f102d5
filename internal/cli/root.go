package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitee.com/xuesongtao/sqlbind"
)

// RootOptions 全局参数
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	Config *Config // PersistentPreRunE 中加载
}

// NewRootCommand sqlbind 命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sqlbind",
		Short: "sqlbind - named parameter sql mapping",
		Long:  "Parse named parameter sql, bind parameters and map result rows by column name.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			if opts.Verbose {
				cfg.PrintSql = true
			}
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "yaml config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "print executed sql")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	return cmd
}

// open 按配置打开连接
func (o *RootOptions) open() (*sqlbind.Manager, error) {
	cfg := o.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is not loaded")
	}
	return sqlbind.Open(cfg.Driver, cfg.DSN,
		sqlbind.WithPrintSql(cfg.PrintSql),
		sqlbind.WithCacheSize(cfg.CacheSize),
	)
}
