package container

import (
	"arbwatch/internal/application/port"
	"arbwatch/internal/application/service"
	"arbwatch/internal/application/usecase/monitor"
)

// Container 应用层组件，按需创建，共享同一个 QuoteStore
type Container struct {
	repo       port.SignalRepository
	notifier   port.Notifier
	publishers []port.SignalPublisher

	thresholdBps float64
	keep         int

	store         *monitor.QuoteStore
	signalService *service.SignalService
	detector      *service.ArbitrageDetector
}

func New(repo port.SignalRepository, notifier port.Notifier, thresholdBps float64, keep int, publishers ...port.SignalPublisher) *Container {
	return &Container{
		repo:         repo,
		notifier:     notifier,
		publishers:   publishers,
		thresholdBps: thresholdBps,
		keep:         keep,
	}
}

func (c *Container) Repository() port.SignalRepository {
	return c.repo
}

func (c *Container) QuoteStore() *monitor.QuoteStore {
	if c.store == nil {
		c.store = monitor.NewQuoteStore()
	}
	return c.store
}

func (c *Container) SignalService() *service.SignalService {
	if c.signalService == nil {
		c.signalService = service.NewSignalService(c.repo, c.keep, c.publishers...)
	}
	return c.signalService
}

func (c *Container) Detector() *service.ArbitrageDetector {
	if c.detector == nil {
		c.detector = service.NewArbitrageDetector(c.QuoteStore(), c.notifier, c.SignalService(), c.thresholdBps)
	}
	return c.detector
}

func (c *Container) Close() error {
	return c.repo.Close()
}
