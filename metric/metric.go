package metric

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/craftops/console-agent/types"

	statsdlib "github.com/CMGS/statsd"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Client combines statsd and prometheus. Prometheus is scraped from the
// local api, statsd is pushed every Metrics.Step seconds when transfers
// are configured.
type Client struct {
	sync.Mutex
	hostname  string
	transfers []string
	step      time.Duration
	data      map[string]float64

	LogsReceived  prometheus.Counter
	Reconnects    prometheus.Counter
	PollFailures  *prometheus.CounterVec
	JobsActive    prometheus.Gauge
	ToastsShown   *prometheus.CounterVec
	Connected     prometheus.Gauge
	PlayersOnline prometheus.Gauge
	ServerTPS     prometheus.Gauge
}

var (
	client *Client
	once   sync.Once
)

// InitClient builds the singleton metrics client
func InitClient(config *types.Config) {
	once.Do(func() {
		labels := map[string]string{"hostname": config.HostName}
		client = &Client{
			hostname:  config.HostName,
			transfers: config.Metrics.Transfers,
			step:      time.Duration(config.Metrics.Step) * time.Second,
			data:      map[string]float64{},
			LogsReceived: prometheus.NewCounter(prometheus.CounterOpts{
				Name:        "console_logs_received_total",
				Help:        "console log lines received over the transport.",
				ConstLabels: labels,
			}),
			Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
				Name:        "transport_reconnects_total",
				Help:        "websocket connections established.",
				ConstLabels: labels,
			}),
			PollFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name:        "poll_failures_total",
				Help:        "failed poll ticks.",
				ConstLabels: labels,
			}, []string{"poller"}),
			JobsActive: prometheus.NewGauge(prometheus.GaugeOpts{
				Name:        "jobs_active",
				Help:        "jobs currently queued or running.",
				ConstLabels: labels,
			}),
			ToastsShown: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name:        "toasts_shown_total",
				Help:        "notifications dispatched.",
				ConstLabels: labels,
			}, []string{"severity"}),
			Connected: prometheus.NewGauge(prometheus.GaugeOpts{
				Name:        "transport_connected",
				Help:        "1 while the websocket is connected.",
				ConstLabels: labels,
			}),
			PlayersOnline: prometheus.NewGauge(prometheus.GaugeOpts{
				Name:        "server_players_online",
				Help:        "players online as last reported.",
				ConstLabels: labels,
			}),
			ServerTPS: prometheus.NewGauge(prometheus.GaugeOpts{
				Name:        "server_tps",
				Help:        "server ticks per second as last reported.",
				ConstLabels: labels,
			}),
		}
		prometheus.MustRegister(
			client.LogsReceived,
			client.Reconnects,
			client.PollFailures,
			client.JobsActive,
			client.ToastsShown,
			client.Connected,
			client.PlayersOnline,
			client.ServerTPS,
		)
	})
}

// GetClient returns the singleton, nil before InitClient
func GetClient() *Client {
	return client
}

// Record stores a gauge value for the next statsd push
func (c *Client) Record(key string, value float64) {
	c.Lock()
	defer c.Unlock()
	c.data[key] = value
}

// Report pushes recorded gauges to every statsd transfer until ctx is
// done. No-op when no transfers are configured.
func (c *Client) Report(ctx context.Context) {
	if len(c.transfers) == 0 || c.step <= 0 {
		return
	}
	log.Infof("[metrics] statsd report starts, step %v", c.step)
	defer log.Infof("[metrics] statsd report stops")

	tick := time.NewTicker(c.step)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			c.push()
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) push() {
	c.Lock()
	data := make(map[string]float64, len(c.data))
	for k, v := range c.data {
		data[k] = v
	}
	c.Unlock()

	for _, transfer := range c.transfers {
		remote, err := statsdlib.New(transfer)
		if err != nil {
			log.Errorf("[metrics] connect statsd %s failed: %v", transfer, err)
			continue
		}
		for k, v := range data {
			key := fmt.Sprintf("console-agent.%s.%s", c.hostname, k)
			remote.Gauge(key, v)
		}
		remote.Flush()
		remote.Close()
	}
}
