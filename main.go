package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/craftops/console-agent/api"
	"github.com/craftops/console-agent/client"
	"github.com/craftops/console-agent/manager/console"
	"github.com/craftops/console-agent/manager/jobs"
	"github.com/craftops/console-agent/manager/status"
	"github.com/craftops/console-agent/metric"
	"github.com/craftops/console-agent/notify"
	"github.com/craftops/console-agent/transport"
	"github.com/craftops/console-agent/types"
	"github.com/craftops/console-agent/utils"
	"github.com/craftops/console-agent/version"

	"github.com/jinzhu/configor"
	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

func setupLogLevel(l string) error {
	level, err := log.ParseLevel(l)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	return nil
}

func initConfig(c *cli.Context) *types.Config {
	config := &types.Config{}

	files := []string{}
	if _, err := os.Stat(c.String("config")); err == nil {
		files = append(files, c.String("config"))
	}
	if err := configor.Load(config, files...); err != nil {
		log.Fatalf("[main] load config failed %v", err)
	}

	config.Prepare(c)
	config.Print()
	return config
}

func serve(c *cli.Context) error {
	if err := setupLogLevel(c.String("log-level")); err != nil {
		log.Fatal(err)
	}

	config := initConfig(c)
	utils.WritePid(config.PidFile)
	defer os.Remove(config.PidFile)

	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	metric.InitClient(config)

	panelClient := client.New(config)
	notifier := notify.NewDispatcher()
	defer notifier.Stop()

	trans, err := transport.New(config)
	if err != nil {
		return err
	}

	consoleManager := console.NewManager(config, trans, notifier)
	jobManager := jobs.NewManager(config, panelClient, notifier)
	statusManager := status.NewManager(config, panelClient)

	errChan := make(chan error, 1)
	wg := &sync.WaitGroup{}

	run := func(name string, f func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(ctx); err != nil {
				log.Errorf("[main] %s err: %v, exiting", name, err)
				select {
				case errChan <- err:
				default:
				}
			}
		}()
	}

	run("transport", trans.Run)
	run("console manager", consoleManager.Run)
	run("job manager", jobManager.Run)
	run("status manager", statusManager.Run)

	go metric.GetClient().Report(ctx)

	apiHandler := api.NewHandler(config, consoleManager, jobManager, statusManager, notifier)
	apiHandler.Serve()

	go func() {
		select {
		case <-ctx.Done():
			log.Info("[main] agent caught system signal, exiting")
		case <-errChan:
			cancel()
		}
	}()

	wg.Wait()
	return nil
}

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Print(version.String())
	}

	app := &cli.App{
		Name:    version.NAME,
		Usage:   "Run the admin console agent",
		Version: version.VERSION,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "/etc/craftops/console-agent.yaml",
				Usage:   "config file path for the agent, in yaml",
				EnvVars: []string{"CONSOLE_AGENT_CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "INFO",
				Usage:   "set log level",
				EnvVars: []string{"CONSOLE_AGENT_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Value:   "",
				Usage:   "panel api endpoint",
				EnvVars: []string{"CONSOLE_AGENT_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "token",
				Value:   "",
				Usage:   "panel api token",
				EnvVars: []string{"CONSOLE_AGENT_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "api-addr",
				Value:   "",
				Usage:   "local api serving address",
				EnvVars: []string{"CONSOLE_AGENT_API_ADDR"},
			},
			&cli.IntFlag{
				Name:    "job-poll-interval",
				Usage:   "interval in seconds for job list polling",
				EnvVars: []string{"CONSOLE_AGENT_JOB_POLL_INTERVAL"},
			},
			&cli.IntFlag{
				Name:    "status-poll-interval",
				Usage:   "interval in seconds for status polling",
				EnvVars: []string{"CONSOLE_AGENT_STATUS_POLL_INTERVAL"},
			},
			&cli.Int64Flag{
				Name:    "metrics-step",
				Value:   0,
				Usage:   "interval for metrics to send",
				EnvVars: []string{"CONSOLE_AGENT_METRICS_STEP"},
			},
			&cli.StringSliceFlag{
				Name:    "metrics-transfers",
				Value:   &cli.StringSlice{},
				Usage:   "statsd destinations",
				EnvVars: []string{"CONSOLE_AGENT_METRICS_TRANSFERS"},
			},
			&cli.StringFlag{
				Name:    "pidfile",
				Value:   "",
				Usage:   "pidfile to save",
				EnvVars: []string{"CONSOLE_AGENT_PIDFILE"},
			},
			&cli.StringFlag{
				Name:    "hostname",
				Value:   "",
				Usage:   "change hostname",
				EnvVars: []string{"CONSOLE_AGENT_HOSTNAME"},
			},
		},
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		log.Errorf("Error running agent: %v", err)
	}
}
