package types

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"
)

// PanelConfig locates the admin panel API
type PanelConfig struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
	WSPath   string `yaml:"ws_path" default:"/ws"`
}

// PollConfig contains polling cadences, in seconds
type PollConfig struct {
	JobInterval    int `yaml:"job_interval" default:"2"`
	StatusInterval int `yaml:"status_interval" default:"5"`
	JobLimit       int `yaml:"job_limit" default:"20"`
}

// ConsoleConfig contains log buffer caps
type ConsoleConfig struct {
	BufferSize  int `yaml:"buffer_size" default:"1000"`
	PreviewSize int `yaml:"preview_size" default:"50"`
}

// MetricsConfig contains metrics config
type MetricsConfig struct {
	Step      int64    `yaml:"step" default:"10"`
	Transfers []string `yaml:"transfers"`
}

// APIConfig contains the local api config
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// Config contains all configs
type Config struct {
	PidFile                 string `yaml:"pid" default:"/tmp/console-agent.pid"`
	HostName                string `yaml:"-"`
	GlobalConnectionTimeout int    `yaml:"global_connection_timeout" default:"5"`

	Panel   PanelConfig   `yaml:"panel"`
	Poll    PollConfig    `yaml:"poll"`
	Console ConsoleConfig `yaml:"console"`
	Metrics MetricsConfig `yaml:"metrics"`
	API     APIConfig     `yaml:"api"`
}

// Prepare 从cli覆写并做准备
func (config *Config) Prepare(c *cli.Context) {
	if c.String("hostname") != "" {
		config.HostName = c.String("hostname")
	} else {
		hostname, err := os.Hostname()
		if err != nil {
			log.Fatal(err)
		}
		config.HostName = hostname
	}

	if c.String("endpoint") != "" {
		config.Panel.Endpoint = c.String("endpoint")
	}
	if c.String("token") != "" {
		config.Panel.Token = c.String("token")
	}
	if c.String("api-addr") != "" {
		config.API.Addr = c.String("api-addr")
	}
	if c.String("pidfile") != "" {
		config.PidFile = c.String("pidfile")
	}
	if c.Int("job-poll-interval") > 0 {
		config.Poll.JobInterval = c.Int("job-poll-interval")
	}
	if c.Int("status-poll-interval") > 0 {
		config.Poll.StatusInterval = c.Int("status-poll-interval")
	}
	if c.Int64("metrics-step") > 0 {
		config.Metrics.Step = c.Int64("metrics-step")
	}
	if len(c.StringSlice("metrics-transfers")) > 0 {
		config.Metrics.Transfers = c.StringSlice("metrics-transfers")
	}

	// validate
	if config.Panel.Endpoint == "" {
		log.Fatal("need to set panel endpoint")
	}
	if config.Poll.JobLimit <= 0 {
		config.Poll.JobLimit = 20
	}
}

// GetConnectionTimeout .
func (config *Config) GetConnectionTimeout() time.Duration {
	return time.Duration(config.GlobalConnectionTimeout) * time.Second
}

// GetJobPollInterval .
func (config *Config) GetJobPollInterval() time.Duration {
	return time.Duration(config.Poll.JobInterval) * time.Second
}

// GetStatusPollInterval .
func (config *Config) GetStatusPollInterval() time.Duration {
	return time.Duration(config.Poll.StatusInterval) * time.Second
}

// Print shows the effective config, token masked
func (config *Config) Print() {
	masked := *config
	if masked.Panel.Token != "" {
		masked.Panel.Token = "******"
	}
	bs, err := yaml.Marshal(masked)
	if err != nil {
		log.Fatalf("[config] print config failed %v", err)
	}
	log.Infof("---- current config ----\n%s", string(bs))
	log.Info("------------------------")
}
