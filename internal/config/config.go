package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PRINTER_MONITOR"

// Config is the typed view over configs/config.yml and PRINTER_MONITOR_* env vars.
type Config struct {
	Port       string
	DBPath     string
	LogLevel   string
	Auth       AuthConfig
	Thresholds ThresholdConfig
	Notify     NotifyConfig
	Simulator  SimulatorConfig
}

type AuthConfig struct {
	SigningKey   string
	TokenTTL     time.Duration
	AdminKeyHash string // bcrypt hash of the key required to mint printer tokens
}

type ThresholdConfig struct {
	ReachDelta        float64
	CooldownThreshold float64
}

type NotifyConfig struct {
	Journal bool
	MQTT    MQTTConfig
	Kafka   KafkaConfig
}

type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	TopicPrefix string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type SimulatorConfig struct {
	Enabled  bool
	Tick     time.Duration
	Printers []int64
}

var errMissingSigningKey = errors.New("auth.signing_key must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.token_ttl", 30*24*time.Hour)
	v.SetDefault("thresholds.reach_delta", 2.0)
	v.SetDefault("thresholds.cooldown_threshold", 35.0)
	v.SetDefault("notify.journal", true)
	v.SetDefault("notify.mqtt.enabled", false)
	v.SetDefault("notify.mqtt.client_id", "printer-monitor")
	v.SetDefault("notify.mqtt.topic_prefix", "printers")
	v.SetDefault("notify.kafka.enabled", false)
	v.SetDefault("notify.kafka.topic", "heater-events")
	v.SetDefault("simulator.enabled", false)
	v.SetDefault("simulator.tick", time.Second)
	v.SetDefault("simulator.printers", []string{"1"})
}

// Load reads config.yml from the given search paths. A missing file is not an
// error; defaults and env vars still apply.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:     v.GetString("port"),
		DBPath:   v.GetString("db.path"),
		LogLevel: v.GetString("log.level"),
		Auth: AuthConfig{
			SigningKey:   v.GetString("auth.signing_key"),
			TokenTTL:     v.GetDuration("auth.token_ttl"),
			AdminKeyHash: v.GetString("auth.admin_key_hash"),
		},
		Thresholds: ThresholdConfig{
			ReachDelta:        v.GetFloat64("thresholds.reach_delta"),
			CooldownThreshold: v.GetFloat64("thresholds.cooldown_threshold"),
		},
		Notify: NotifyConfig{
			Journal: v.GetBool("notify.journal"),
			MQTT: MQTTConfig{
				Enabled:     v.GetBool("notify.mqtt.enabled"),
				Broker:      v.GetString("notify.mqtt.broker"),
				ClientID:    v.GetString("notify.mqtt.client_id"),
				TopicPrefix: v.GetString("notify.mqtt.topic_prefix"),
			},
			Kafka: KafkaConfig{
				Enabled: v.GetBool("notify.kafka.enabled"),
				Brokers: listValue(v, "notify.kafka.brokers"),
				Topic:   v.GetString("notify.kafka.topic"),
			},
		},
		Simulator: SimulatorConfig{
			Enabled: v.GetBool("simulator.enabled"),
			Tick:    v.GetDuration("simulator.tick"),
		},
	}

	for _, raw := range listValue(v, "simulator.printers") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("simulator.printers: invalid printer id %q", raw)
		}
		cfg.Simulator.Printers = append(cfg.Simulator.Printers, id)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// listValue reads a YAML list or a comma/space separated env string.
func listValue(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		out = append(out, strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ' ' })...)
	}
	return out
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errMissingSigningKey
	}
	if c.Thresholds.ReachDelta < 0 {
		return fmt.Errorf("thresholds.reach_delta must be >= 0, got %v", c.Thresholds.ReachDelta)
	}
	if c.Notify.MQTT.Enabled && c.Notify.MQTT.Broker == "" {
		return errors.New("notify.mqtt.broker is required when mqtt is enabled")
	}
	if c.Notify.Kafka.Enabled && len(c.Notify.Kafka.Brokers) == 0 {
		return errors.New("notify.kafka.brokers is required when kafka is enabled")
	}
	if c.Simulator.Enabled && c.Simulator.Tick <= 0 {
		return fmt.Errorf("simulator.tick must be > 0, got %v", c.Simulator.Tick)
	}
	return nil
}
