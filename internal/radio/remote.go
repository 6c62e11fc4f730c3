package radio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"copresence/internal/domain"
)

// Remote is a radio attached to an Air served by NewHandler.
type Remote struct {
	Base   string
	Addr   string
	At     Point
	HTTP   *http.Client
	Dialer *websocket.Dialer
	Log    *log.Logger

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

// NewRemote returns a radio that joins the medium at base as addr.
func NewRemote(base, addr string, at Point) *Remote {
	return &Remote{
		Base:   strings.TrimRight(base, "/"),
		Addr:   addr,
		At:     at,
		HTTP:   http.DefaultClient,
		Dialer: websocket.DefaultDialer,
		Log:    log.Default(),
	}
}

func (c *Remote) url(scheme, path string, service uuid.UUID) (string, error) {
	u, err := url.Parse(c.Base + path + "/" + url.PathEscape(c.Addr))
	if err != nil {
		return "", err
	}
	if scheme != "" {
		switch u.Scheme {
		case "https":
			u.Scheme = "wss"
		default:
			u.Scheme = scheme
		}
	}
	q := url.Values{}
	q.Set("service", service.String())
	q.Set("x", strconv.FormatFloat(c.At.X, 'f', -1, 64))
	q.Set("y", strconv.FormatFloat(c.At.Y, 'f', -1, 64))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Remote) StartBroadcast(ctx context.Context, service uuid.UUID, payload []byte) error {
	u, err := c.url("", "/adv", service)
	if err != nil {
		return &domain.AdvertiseError{Code: domain.AdvertiseInternalError, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return &domain.AdvertiseError{Code: domain.AdvertiseInternalError, Err: err}
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &domain.AdvertiseError{Code: domain.AdvertiseInternalError, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode/100 == 2:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return &domain.AdvertiseError{Code: domain.AdvertiseAlreadyStarted}
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return &domain.AdvertiseError{Code: domain.AdvertiseDataTooLarge}
	default:
		return &domain.AdvertiseError{
			Code: domain.AdvertiseInternalError,
			Err:  fmt.Errorf("air put %s: %s", c.Addr, resp.Status),
		}
	}
}

func (c *Remote) StopBroadcast() error {
	req, err := http.NewRequest(http.MethodDelete, c.Base+"/adv/"+url.PathEscape(c.Addr), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("air delete %s: %s", c.Addr, resp.Status)
	}
	return nil
}

func (c *Remote) StartScan(ctx context.Context, service uuid.UUID, frames chan<- domain.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return ErrScanActive
	}
	u, err := c.url("ws", "/scan", service)
	if err != nil {
		return err
	}
	conn, _, err := c.Dialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("air scan %s: %w", c.Addr, err)
	}
	done := make(chan struct{})
	c.conn, c.done = conn, done

	go func() {
		defer close(done)
		for {
			var f domain.Frame
			if err := conn.ReadJSON(&f); err != nil {
				if !errors.Is(err, net.ErrClosed) && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					c.Log.Printf("air scan %s: %v", c.Addr, err)
				}
				return
			}
			select {
			case frames <- f:
			default:
			}
		}
	}()
	return nil
}

func (c *Remote) StopScan() error {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.conn, c.done = nil, nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := conn.Close()
	<-done
	return err
}

var _ domain.RadioAdapter = (*Remote)(nil)
