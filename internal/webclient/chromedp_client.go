package webclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raysh454/favicond/internal/logging"
)

// ChromedpClient renders documents in headless Chrome so that icon links
// injected by scripts are present in the returned HTML. Requests without
// OptionRender, and anything other than GET, go through net/http.
type ChromedpClient struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	fallback  *NetHTTPClient
	idleAfter time.Duration
	timeout   time.Duration
	logger    logging.Logger
}

// NewChromedpClient starts a browser process. It fails when Chrome is not
// installed.
func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromedpClient, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", cfg.Headless))

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	fallback, err := NewNetHTTPClient(cfg, logger, nil)
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	idle := cfg.RenderIdle
	if idle <= 0 {
		idle = 2 * time.Second
	}

	componentLogger.Debug("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: idle.String()})

	return &ChromedpClient{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		fallback:      fallback,
		idleAfter:     idle,
		timeout:       cfg.Timeout,
		logger:        componentLogger,
	}, nil
}

// waitNetworkIdle returns a channel closed once no request has been in
// flight for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() { close(idleChan) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	return idleChan
}

func (c *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if !req.WantsRender() || (req.Method != "" && req.Method != http.MethodGet) {
		return c.fallback.Do(ctx, req)
	}

	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()
	if c.timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, c.timeout)
		defer cancelTimeout()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	c.logger.Debug("rendering page", logging.Field{Key: "url", Value: req.URL})

	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		return nil, fmt.Errorf("enable network: %w", err)
	}
	if len(req.Headers) > 0 {
		hdrs := network.Headers{}
		for k := range req.Headers {
			hdrs[k] = req.Headers.Get(k)
		}
		if err := chromedp.Run(tabCtx, network.SetExtraHTTPHeaders(hdrs)); err != nil {
			return nil, fmt.Errorf("set headers: %w", err)
		}
	}

	idle := waitNetworkIdle(tabCtx, c.idleAfter)

	navResp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(req.URL))
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", req.URL, err)
	}

	select {
	case <-idle:
	case <-time.After(c.idleAfter * 5):
	case <-tabCtx.Done():
		return nil, fmt.Errorf("render %s: %w", req.URL, tabCtx.Err())
	}

	var html, location string
	if err := chromedp.Run(tabCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html),
	); err != nil {
		return nil, fmt.Errorf("read document %s: %w", req.URL, err)
	}

	resp := &Response{
		Request:   req,
		Headers:   http.Header{},
		Body:      []byte(html),
		FinalURL:  location,
		FetchedAt: time.Now(),
	}
	if navResp != nil {
		resp.StatusCode = int(navResp.Status)
		for k, v := range navResp.Headers {
			resp.Headers.Set(k, fmt.Sprint(v))
		}
	}
	return resp, nil
}

func (c *ChromedpClient) Close() error {
	c.browserCancel()
	c.allocCancel()
	c.logger.Debug("closed chromedp webclient")
	return c.fallback.Close()
}
