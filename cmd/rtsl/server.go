package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	gops "github.com/google/gops/agent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bristot/linux-rt-rtsl/internal/probe"
)

var (
	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "run the rtsl metrics/event server",
		Run: func(cmd *cobra.Command, args []string) {
			srv := &rtslServer{
				v:   *viper.New(),
				ctx: context.Background(),
			}

			log.Infof("start with config file %s", configPath)
			srv.v.SetConfigFile(configPath)
			if err := srv.mergeConfig(); err != nil {
				log.Errorf("merge config err: %v", err)
				return
			}

			if srv.config.DebugMode {
				log.SetLevel(log.DebugLevel)
			}

			srv.v.OnConfigChange(func(e fsnotify.Event) {
				log.Info("start reload config")
				if err := srv.reload(); err != nil {
					log.Warnf("reload config error: %v", err)
					return
				}
				log.Info("config reload succeeded")
			})
			srv.v.WatchConfig()

			if err := srv.start(); err != nil {
				log.Errorf("start server err: %v", err)
			}
		},
	}

	configPath string
)

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringVarP(&configPath, "config", "c", "/etc/rtsl/config.yaml", "config file path")
}

// ProbeManager drives one probe type's full lifecycle, giving the single
// rtsl probe diffed-config reload for free.
type ProbeManager[T probe.Probe] interface {
	CreateProbe(config ProbeConfig) (T, error)
	StartProbe(ctx context.Context, probe T) error
	StopProbe(ctx context.Context, probe T) error
}

type DynamicProbeServer[T probe.Probe] struct {
	lock         sync.Mutex
	probeManager ProbeManager[T]
	lastConfig   []ProbeConfig
	probes       map[string]T
}

func NewDynamicProbeServer[T probe.Probe](probeManager ProbeManager[T]) *DynamicProbeServer[T] {
	return &DynamicProbeServer[T]{
		probeManager: probeManager,
		probes:       make(map[string]T),
	}
}

func (s *DynamicProbeServer[T]) probeChanges(config []ProbeConfig) (toAdd []ProbeConfig, toClose []string) {
	toMap := func(configs []ProbeConfig) map[string]ProbeConfig {
		ret := make(map[string]ProbeConfig)
		for _, c := range configs {
			ret[c.Name] = c
		}
		return ret
	}
	lastConfigMap := toMap(s.lastConfig)
	configMap := toMap(config)

	for name := range lastConfigMap {
		if _, ok := configMap[name]; !ok {
			toClose = append(toClose, name)
		}
	}

	for name, conf := range configMap {
		lastConf, ok := lastConfigMap[name]
		if !ok {
			toAdd = append(toAdd, conf)
		} else if !reflect.DeepEqual(lastConf, conf) {
			toAdd = append(toAdd, conf)
			toClose = append(toClose, name)
		}
	}

	return toAdd, toClose
}

func (s *DynamicProbeServer[T]) Start(ctx context.Context, config []ProbeConfig) error {
	return s.Reload(ctx, config)
}

func (s *DynamicProbeServer[T]) Stop(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, p := range s.probes {
		if err := s.probeManager.StopProbe(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *DynamicProbeServer[T]) Reload(ctx context.Context, config []ProbeConfig) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	toAdd, toClose := s.probeChanges(config)
	var toAddProbes []T
	for _, conf := range toAdd {
		p, err := s.probeManager.CreateProbe(conf)
		if err != nil {
			return fmt.Errorf("error create probe %s: %w", conf.Name, err)
		}
		toAddProbes = append(toAddProbes, p)
	}

	for _, name := range toClose {
		p, ok := s.probes[name]
		if !ok {
			continue
		}
		if err := s.probeManager.StopProbe(ctx, p); err != nil {
			return fmt.Errorf("failed stop probe %s: %w", name, err)
		}
		delete(s.probes, name)
	}

	s.lastConfig = config

	for _, p := range toAddProbes {
		s.probes[p.Name()] = p
		if err := s.probeManager.StartProbe(ctx, p); err != nil {
			log.Errorf("failed start probe %s: %v", p.Name(), err)
		}
	}

	return nil
}

type probeState struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

func (s *DynamicProbeServer[T]) listProbes() []probeState {
	s.lock.Lock()
	defer s.lock.Unlock()

	var ret []probeState
	for name, p := range s.probes {
		ret = append(ret, probeState{Name: name, State: p.State().String()})
	}
	return ret
}

type rtslServer struct {
	v             viper.Viper
	config        serverConfig
	ctx           context.Context
	metricsServer *MetricsServer
	eventServer   *EventServer
}

func (s *rtslServer) mergeConfig() error {
	if err := s.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return fmt.Errorf("config file %s not found", s.v.ConfigFileUsed())
		}
		return fmt.Errorf("config file err: %w", err)
	}

	cfg := &serverConfig{}
	if err := s.v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config file err: %w", err)
	}
	s.config = *cfg
	return nil
}

func (s *rtslServer) reload() error {
	cfg := serverConfig{}
	if err := s.v.Unmarshal(&cfg); err != nil {
		return err
	}

	ctx := context.TODO()
	if err := s.metricsServer.Reload(ctx, cfg.MetricsConfig.Probes); err != nil {
		return fmt.Errorf("reload metrics server error: %w", err)
	}
	if err := s.eventServer.Reload(ctx, cfg.EventConfig.Probes); err != nil {
		return fmt.Errorf("reload event server error: %w", err)
	}

	s.config = cfg
	return nil
}

func (s *rtslServer) start() error {
	if err := gops.Listen(gops.Options{}); err != nil {
		log.Infof("start gops err: %v", err)
	}

	var err error
	s.metricsServer, err = newMetricsServer()
	if err != nil {
		return fmt.Errorf("failed create metrics server: %w", err)
	}
	if err := s.metricsServer.Start(s.ctx, s.config.MetricsConfig.Probes); err != nil {
		return fmt.Errorf("failed start metrics server: %w", err)
	}

	sinks, err := createSinks(s.config.EventConfig.EventSinks)
	if err != nil {
		return fmt.Errorf("failed create sinks: %w", err)
	}

	s.eventServer, err = newEventServer(sinks)
	if err != nil {
		return fmt.Errorf("failed create event server: %w", err)
	}
	if err := s.eventServer.Start(s.ctx, s.config.EventConfig.Probes); err != nil {
		return fmt.Errorf("failed start event server: %w", err)
	}

	http.Handle("/metrics", s.metricsServer)
	http.Handle("/", http.HandlerFunc(defaultPage))
	http.Handle("/config", http.HandlerFunc(s.configPage))
	http.Handle("/status", http.HandlerFunc(s.statusPage))
	if s.config.DebugMode {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		http.Handle("/internal", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	listenAddr := fmt.Sprintf(":%d", s.config.Port)
	httpSrv := &http.Server{Addr: listenAddr}
	go func() {
		log.Infof("rtsl server listening on %s", listenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("rtsl server err: %v", err)
		}
	}()

	waitSignals(s, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	return httpSrv.Close()
}

func waitSignals(s *rtslServer, sigs ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	sig := <-ch
	log.Warnf("received signal %s, stopping", sig)
	if err := s.metricsServer.Stop(s.ctx); err != nil {
		log.Errorf("failed stop metrics server: %v", err)
	}
	if err := s.eventServer.Stop(s.ctx); err != nil {
		log.Errorf("failed stop event server: %v", err)
	}
}

func defaultPage(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte(`<html>
		<head><title>rtsl</title></head>
		<body>
		<h1>rtsl</h1>
		<p><a href="/metrics">Metrics</a></p>
		<p><a href="/status">Status</a></p>
		</body>
		</html>`))
}

func (s *rtslServer) configPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	data, _ := json.MarshalIndent(s.config, " ", "    ")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *rtslServer) statusPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	res := map[string]interface{}{
		"inuse_probes": map[string][]probeState{
			"metrics": s.metricsServer.listProbes(),
			"event":   s.eventServer.listProbes(),
		},
		"available_probes": map[string][]string{
			"event":   probe.ListEventProbes(),
			"metrics": probe.ListMetricsProbes(),
		},
	}

	data, err := json.Marshal(res)
	if err != nil {
		log.Errorf("failed marshal status: %v", err)
		return
	}
	w.Write(data)
}
