package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fuzzylts/fuzzylts-go/task"
	"github.com/fuzzylts/fuzzylts-go/utils/config"
	"github.com/fuzzylts/fuzzylts-go/utils/input"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// Prometheus指标监听地址，设置为空则不启动
	metricsListen = flag.String("metrics.listen", "", "prometheus metrics listening address (empty means disabled), e.g. :9100")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "fuzzylts")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Fatalf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Fatalf("config data load err: %v", err)
		}
	} else {
		log.Fatal("config file or config data must be specified")
	}
	c, err := config.Load(file)
	if err != nil {
		log.Fatalf("config file load err: %v", err)
	}
	log.Debugf("%+v", c)

	n, err := input.LoadNetwork(context.Background(), c.Input)
	if err != nil {
		log.Fatalf("network load err: %v", err)
	}
	t, err := task.NewContext(c, n, task.NewSimulation(c.Simulation))
	if err != nil {
		log.Fatalf("task init err: %v", err)
	}
	log.Infof("run %s: controller=%s simulation=%s", t.RunID(), c.Control.Controller, c.Simulation.Mode)

	if *metricsListen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsListen, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics server: %v", err)
			}
		}()
		log.Infof("serving metrics at %s/metrics", *metricsListen)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		log.Warnf("received %v, stopping after current step", s)
		t.Stop()
	}()

	runErr := t.Run()
	if err := t.Close(); err != nil {
		log.Errorf("close simulation: %v", err)
	}
	if runErr != nil {
		log.Fatalf("control loop failed: %v", runErr)
	}
	log.Info("done")
}
