package sqlbind

// Option 配置项
type Option func(*options)

type options struct {
	cacheSize  int
	registry   *Registry
	printSql   bool
	driverName string
}

func newOptions(opts ...Option) *options {
	o := &options{cacheSize: lruSize}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithCacheSize 设置 sql 解析/元信息/结构体描述缓存的大小
func WithCacheSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.cacheSize = size
		}
	}
}

// WithRegistry 使用自定义的 Registry
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithPrintSql 打印执行的 sql
func WithPrintSql(print bool) Option {
	return func(o *options) {
		o.printSql = print
	}
}

// WithDriverName 驱动名, 用于把 ? 转为对应驱动的占位符
func WithDriverName(name string) Option {
	return func(o *options) {
		o.driverName = name
	}
}
