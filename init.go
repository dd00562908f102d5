package sqlbind

import (
	"strings"
	"sync"
)

const (
	lruSize        = 1 << 10 // 默认缓存大小
	defaultBeanTag = "db"
)

// 公共部分
var (
	tmpBuf = sync.Pool{New: func() interface{} { return new(strings.Builder) }}
)

func getTmpBuf(size ...int) *strings.Builder {
	obj := tmpBuf.Get().(*strings.Builder)
	if len(size) > 0 {
		obj.Grow(size[0])
	}
	return obj
}

func putTmpBuf(obj *strings.Builder) {
	obj.Reset()
	tmpBuf.Put(obj)
}

// 默认配置, 进程内共享
var (
	defaultFactory     *MappingFactory
	defaultFactoryOnce sync.Once
)

// DefaultFactory 进程内共享的 MappingFactory, 使用默认 Registry
func DefaultFactory() *MappingFactory {
	defaultFactoryOnce.Do(func() {
		defaultFactory = NewMappingFactory()
	})
	return defaultFactory
}

// Register 在默认 Registry 上注册, 应在第一次使用前调用
func Register(t interface{}, m Mapper) {
	DefaultFactory().Registry().Register(TypeOf(t), m)
}

// log 处理
var (
	sLog Logger
	once sync.Once
)

func init() {
	sLog = NewDefaultLogger()
}

// SetLogger 设置 logger, 只生效一次
func SetLogger(logger Logger) {
	once.Do(func() {
		sLog = logger
	})
}
