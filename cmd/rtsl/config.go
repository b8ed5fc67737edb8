package main

type serverConfig struct {
	DebugMode     bool          `mapstructure:"debugmode"`
	Port          uint16        `mapstructure:"port"`
	MetricsConfig MetricsConfig `mapstructure:"metrics"`
	EventConfig   EventConfig   `mapstructure:"event"`
}

type MetricsConfig struct {
	Probes []ProbeConfig `mapstructure:"probes"`
}

type EventConfig struct {
	EventSinks []EventSinkConfig `mapstructure:"sinks"`
	Probes     []ProbeConfig     `mapstructure:"probes"`
}

type EventSinkConfig struct {
	Name string      `mapstructure:"name"`
	Args interface{} `mapstructure:"args"`
}

type ProbeConfig struct {
	Name string                 `mapstructure:"name"`
	Args map[string]interface{} `mapstructure:"args"`
}
