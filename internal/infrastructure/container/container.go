package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"arbwatch/internal/application/port"
	"arbwatch/internal/infrastructure/config"
	"arbwatch/internal/infrastructure/storage"
	"arbwatch/internal/infrastructure/storage/composite"
	pgrepo "arbwatch/internal/infrastructure/storage/postgres"
	redisrepo "arbwatch/internal/infrastructure/storage/redis"
	sqliterepo "arbwatch/internal/infrastructure/storage/sqlite"
)

// Container 存储层依赖：信号仓储（按 driver）、可选 redis、价格镜像
type Container struct {
	cfg         *config.Config
	signalRepo  port.SignalRepository
	redisRepo   *redisrepo.Repo
	mirror      *composite.Mirror
	closeOnce   sync.Once
	closerChain []func() error
}

// New 创建新的容器实例
func New(cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		closerChain: make([]func() error, 0),
	}

	if err := c.initStorage(); err != nil {
		// 清理已初始化的资源
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// initStorage 初始化信号仓储，然后 redis，最后组装价格镜像
func (c *Container) initStorage() error {
	switch c.cfg.Storage.Driver {
	case storage.DriverSQLite, "":
		if err := c.initSQLite(); err != nil {
			return fmt.Errorf("sqlite init failed: %w", err)
		}
	case storage.DriverPostgres:
		if err := c.initPostgres(); err != nil {
			return fmt.Errorf("postgres init failed: %w", err)
		}
	case storage.DriverMemory:
		c.signalRepo = storage.NewInMemorySignalRepository()
		log.Warn().Msg("in-memory signal storage, signals are lost on restart")
	default:
		return fmt.Errorf("unsupported storage driver %q", c.cfg.Storage.Driver)
	}

	if c.cfg.Storage.Redis.Enabled {
		if err := c.initRedis(); err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
	}

	if c.cfg.Storage.MirrorQuotes {
		var mirrors []port.QuoteMirror
		if m, ok := c.signalRepo.(port.QuoteMirror); ok {
			mirrors = append(mirrors, m)
		}
		if c.redisRepo != nil {
			mirrors = append(mirrors, c.redisRepo)
		}
		c.mirror = composite.New(mirrors...)
	}
	return nil
}

// initRedis 初始化 Redis 连接
func (c *Container) initRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := redisrepo.NewClient(ctx, redisrepo.Options{
		Addr:     c.cfg.Storage.Redis.Addr,
		Password: c.cfg.Storage.Redis.Password,
		DB:       c.cfg.Storage.Redis.DB,
	})
	if err != nil {
		return err
	}

	ttl := time.Duration(c.cfg.Storage.Redis.TTLSeconds) * time.Second

	c.redisRepo = redisrepo.New(
		rdb,
		c.cfg.Storage.Redis.Prefix,
		ttl,
		c.cfg.Storage.Redis.SignalStream,
		c.cfg.Storage.Redis.SignalChannel,
	)

	// 注册关闭回调
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", c.cfg.Storage.Redis.Addr).
		Int("db", c.cfg.Storage.Redis.DB).
		Msg("redis initialized")

	return nil
}

// initSQLite 初始化 SQLite 数据库
func (c *Container) initSQLite() error {
	repo, err := sqliterepo.New(c.cfg.Storage.SQLite.Path)
	if err != nil {
		return err
	}
	c.signalRepo = repo

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", c.cfg.Storage.SQLite.Path).
		Msg("sqlite initialized")

	return nil
}

func (c *Container) initPostgres() error {
	repo, err := pgrepo.New(c.cfg.Storage.Postgres.DSN)
	if err != nil {
		return err
	}
	c.signalRepo = repo

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("postgres initialized")
	return nil
}

// SignalRepository 按 storage.driver 创建的信号仓储
func (c *Container) SignalRepository() port.SignalRepository {
	return c.signalRepo
}

// SignalPublisher redis 未启用时返回 nil
func (c *Container) SignalPublisher() port.SignalPublisher {
	if c.redisRepo == nil {
		return nil
	}
	return c.redisRepo
}

// QuoteMirror mirror_quotes 关闭或没有可用镜像时返回 nil
func (c *Container) QuoteMirror() port.QuoteMirror {
	if c.mirror == nil || c.mirror.Len() == 0 {
		return nil
	}
	return c.mirror
}

// Close 关闭所有资源（按后进先出顺序）
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				log.Error().Err(e).Msg("error closing resource")
				if err == nil {
					err = e
				}
			}
		}
		log.Info().Msg("container closed")
	})
	return err
}
