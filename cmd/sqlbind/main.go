package main

import (
	"os"

	_ "github.com/mattn/go-sqlite3"

	"gitee.com/xuesongtao/sqlbind/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
