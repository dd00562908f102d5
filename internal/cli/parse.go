package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gitee.com/xuesongtao/sqlbind"
)

// NewParseCommand 打印解析后的 sql 和参数
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <sql>",
		Short: "Rewrite named parameters to positional markers",
		Long: `Rewrite :name parameters to ? and print the parameter names in order.

A parameter at the very start of the sql or after another colon (::) is kept as is.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeParsed(cmd.OutOrStdout(), sqlbind.ParseSql(args[0]))
		},
	}
}

func writeParsed(w io.Writer, p *sqlbind.ParsedSql) error {
	if _, err := fmt.Fprintln(w, p.Sql()); err != nil {
		return err
	}
	for i, name := range p.ParameterNames() {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", i+1, name); err != nil {
			return err
		}
	}
	return nil
}
