package publishing

import (
	"io"
	"os"
	"sync"
	"time"
)

// mediaFile is an upload body that opens its file on first read
type mediaFile struct {
	path string
	open func(string) (io.ReadCloser, error)

	mu     sync.Mutex
	rc     io.ReadCloser
	err    error
	closed bool
}

func newMediaFile(path string, open func(string) (io.ReadCloser, error)) *mediaFile {
	if open == nil {
		open = func(p string) (io.ReadCloser, error) { return os.Open(p) }
	}
	return &mediaFile{path: path, open: open}
}

func (m *mediaFile) Read(p []byte) (int, error) {
	m.mu.Lock()
	if m.rc == nil && m.err == nil {
		if m.closed {
			m.err = os.ErrClosed
		} else {
			m.rc, m.err = m.open(m.path)
		}
	}
	rc, err := m.rc, m.err
	m.mu.Unlock()

	if err != nil {
		return 0, err
	}

	return rc.Read(p)
}

// Close releases the file if it was ever opened
func (m *mediaFile) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.rc == nil {
		return nil
	}
	err := m.rc.Close()
	m.rc = nil
	return err
}

// poller samples a counter at a fixed interval until stopped
type poller struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// startPoller calls report with sample() every interval. report is never
// called again once Stop has returned.
func startPoller(interval time.Duration, sample func() int64, report func(int64)) *poller {
	p := &poller{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := int64(-1)
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				// a tick may race with stop; stop wins
				select {
				case <-p.stop:
					return
				default:
				}
				if n := sample(); n != last {
					last = n
					report(n)
				}
			}
		}
	}()

	return p
}

// Stop ends polling and waits for the polling goroutine to exit. Calling it
// more than once is a no-op.
func (p *poller) Stop() {
	p.once.Do(func() {
		close(p.stop)
	})
	<-p.done
}
