package automation

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromeConfig configures headless Chrome sessions.
type ChromeConfig struct {
	Headless      bool
	NavTimeout    time.Duration
	ActionTimeout time.Duration
	Settle        time.Duration
	UserAgent     string
	MinKeyDelay   time.Duration
	MaxKeyDelay   time.Duration
}

// DefaultChromeConfig returns the defaults for form automation.
func DefaultChromeConfig() ChromeConfig {
	return ChromeConfig{
		Headless:      true,
		NavTimeout:    30 * time.Second,
		ActionTimeout: 10 * time.Second,
		Settle:        2 * time.Second,
		MinKeyDelay:   DefaultMinKeyDelay,
		MaxKeyDelay:   DefaultMaxKeyDelay,
	}
}

// ChromeLauncher starts one Chrome instance per session.
// Requires Chrome or Chromium on the host.
type ChromeLauncher struct {
	cfg    ChromeConfig
	typist *Typist
	logger *zap.Logger
}

// NewChromeLauncher creates a launcher. A nil logger disables logging.
func NewChromeLauncher(cfg ChromeConfig, log *zap.Logger) *ChromeLauncher {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChromeLauncher{
		cfg:    cfg,
		typist: NewTypist(cfg.MinKeyDelay, cfg.MaxKeyDelay, 0),
		logger: log,
	}
}

// NewSession starts a browser bound to ctx.
func (l *ChromeLauncher) NewSession(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if l.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.cfg.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// start the browser now so launch failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, &Error{Action: "launch", Cause: err}
	}

	return &chromeSession{
		ctx:    browserCtx,
		cfg:    l.cfg,
		typist: l.typist,
		logger: l.logger,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}, nil
}

type chromeSession struct {
	ctx    context.Context
	cfg    ChromeConfig
	typist *Typist
	logger *zap.Logger

	once   sync.Once
	cancel func()
}

// run executes actions in the browser context, bounded by timeout and by the
// caller's ctx.
func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("navigating", zap.String("url", url))
	err := s.run(ctx, s.cfg.NavTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(s.cfg.Settle),
	)
	if err != nil {
		return &Error{Action: "navigate", Cause: err}
	}
	return nil
}

func (s *chromeSession) Exists(ctx context.Context, selector string) (bool, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, s.cfg.ActionTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return false, &Error{Action: "query", Selector: selector, Cause: err}
	}
	return len(nodes) > 0, nil
}

func (s *chromeSession) Fill(ctx context.Context, selector, value string) error {
	err := s.run(ctx, s.cfg.ActionTimeout,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return &Error{Action: "focus", Selector: selector, Cause: err}
	}

	err = s.typist.Type(ctx, value, func(ctx context.Context, chunk string) error {
		return s.run(ctx, s.cfg.ActionTimeout, chromedp.SendKeys(selector, chunk, chromedp.ByQuery))
	})
	if err != nil {
		return &Error{Action: "type", Selector: selector, Cause: err}
	}
	return nil
}

func (s *chromeSession) Upload(ctx context.Context, selector, path string) error {
	err := s.run(ctx, s.cfg.ActionTimeout,
		chromedp.SetUploadFiles(selector, []string{path}, chromedp.ByQuery),
	)
	if err != nil {
		return &Error{Action: "upload", Selector: selector, Cause: err}
	}
	return nil
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	err := s.run(ctx, s.cfg.ActionTimeout,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return &Error{Action: "click", Selector: selector, Cause: err}
	}
	return nil
}

func (s *chromeSession) Close() error {
	s.once.Do(s.cancel)
	return nil
}
