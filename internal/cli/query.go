package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gitee.com/xuesongtao/sqlbind"
)

// genUUID 参数值为该值时生成一个新的 uuid
const genUUID = "@uuid"

// StatementOptions query/exec 共用
type StatementOptions struct {
	Sql    string
	Params []string // k=v
}

func (s *StatementOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.Sql, "sql", "s", "", "sql with :name parameters")
	cmd.Flags().StringArrayVarP(&s.Params, "param", "p", nil, "parameter as name=value, value @uuid generates a new uuid")
	_ = cmd.MarkFlagRequired("sql")
}

// params k=v 转为 map, 没有参数时返回 nil
func (s *StatementOptions) params() (interface{}, error) {
	if len(s.Params) == 0 {
		return nil, nil
	}
	res := make(map[string]interface{}, len(s.Params))
	for _, kv := range s.Params {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid param %q: should be name=value", kv)
		}
		if v == genUUID {
			res[k] = uuid.NewString()
			continue
		}
		res[k] = v
	}
	return res, nil
}

// NewQueryCommand 查询并以 yaml 输出
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatementOptions{}
	cmd := &cobra.Command{
		Use:          "query",
		Short:        "Run a query and print rows as yaml",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := opts.params()
			if err != nil {
				return err
			}
			m, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer m.Close()

			rows, err := sqlbind.Query[map[string]interface{}](cmd.Context(), m.Session(), opts.Sql, params)
			if err != nil {
				return err
			}
			for _, row := range rows {
				for k, v := range row {
					if b, ok := v.([]byte); ok {
						row[k] = string(b)
					}
				}
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(rows); err != nil {
				return fmt.Errorf("yaml encode is failed, err: %w", err)
			}
			return enc.Close()
		},
	}
	opts.addFlags(cmd)
	return cmd
}

// NewExecCommand 执行并输出影响的行数
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatementOptions{}
	cmd := &cobra.Command{
		Use:          "exec",
		Short:        "Execute a statement and print rows affected",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := opts.params()
			if err != nil {
				return err
			}
			m, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer m.Close()

			affected, err := m.Session().Exec(cmd.Context(), opts.Sql, params)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "affected: %d\n", affected)
			return err
		},
	}
	opts.addFlags(cmd)
	return cmd
}
