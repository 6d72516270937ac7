package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"orbitwatch/internal/orbit"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	DB           DBConfig           `mapstructure:"db"`
	Run          RunConfig          `mapstructure:"run"`
	Schedule     ScheduleConfig     `mapstructure:"schedule"`
	Watchlist    []TrackedObject    `mapstructure:"watchlist"`
	Celestrak    CelestrakConfig    `mapstructure:"celestrak"`
	SpaceTrack   SpaceTrackConfig   `mapstructure:"spacetrack"`
	SessionCache SessionCacheConfig `mapstructure:"session_cache"`
	History      HistoryConfig      `mapstructure:"history"`
	Thresholds   ThresholdsConfig   `mapstructure:"thresholds"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
	// Mode is "once" (one invocation per external scheduler tick) or "serve".
	Mode string `mapstructure:"mode"`
	// DryRun keeps all writes in memory; useful against live providers without a DB.
	DryRun bool `mapstructure:"dry_run"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	// APIToken guards /api/ routes when set.
	APIToken string `mapstructure:"api_token"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type RunConfig struct {
	// Budget bounds the whole run. Detection still runs on persisted data when
	// the budget is spent after persistence, bounded by DetectGrace.
	Budget       time.Duration `mapstructure:"budget"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	DetectGrace  time.Duration `mapstructure:"detect_grace"`
}

type ScheduleConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Ingest    string `mapstructure:"ingest"`
	RunOnBoot bool   `mapstructure:"run_on_boot"`
}

// TrackedObject is one watchlist entry, keyed by NORAD catalog number.
type TrackedObject struct {
	ObjectID string `mapstructure:"object_id"`
	Name     string `mapstructure:"name"`
}

type CelestrakConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Group   string        `mapstructure:"group"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SpaceTrackConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Identity   string        `mapstructure:"identity"`
	Password   string        `mapstructure:"password"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type SessionCacheConfig struct {
	// Driver is "memory" or "redis".
	Driver    string `mapstructure:"driver"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	RedisPass string `mapstructure:"redis_password"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type HistoryConfig struct {
	// TrailingRowCap bounds every trailing history read.
	TrailingRowCap int           `mapstructure:"trailing_row_cap"`
	HealthWindow   time.Duration `mapstructure:"health_window"`
	ManeuverWindow time.Duration `mapstructure:"maneuver_window"`
}

// ThresholdsConfig overrides the detector constants; zero values keep the defaults.
type ThresholdsConfig struct {
	StaleAfter             time.Duration `mapstructure:"stale_after"`
	AltitudeDropMediumKm   float64       `mapstructure:"altitude_drop_medium_km"`
	AltitudeDropCriticalKm float64       `mapstructure:"altitude_drop_critical_km"`
	AltitudeRiseMediumKm   float64       `mapstructure:"altitude_rise_medium_km"`
	DragDelta              float64       `mapstructure:"drag_delta"`
	ManeuverSigma          float64       `mapstructure:"maneuver_sigma"`
	ManeuverMinPoints      int           `mapstructure:"maneuver_min_points"`
	ManeuverDebounce       int           `mapstructure:"maneuver_debounce"`
	ManeuverReportWindow   time.Duration `mapstructure:"maneuver_report_window"`
	PlaneChangeFloorDeg    float64       `mapstructure:"plane_change_floor_deg"`
	CompoundWindow         time.Duration `mapstructure:"compound_window"`
	ManeuverHighAltitudeKm float64       `mapstructure:"maneuver_high_altitude_km"`
	PlaneChangeHighDeg     float64       `mapstructure:"plane_change_high_deg"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ORBIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.mode", "once")
	v.SetDefault("app.dry_run", false)
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("run.budget", "2m")
	v.SetDefault("run.fetch_timeout", "15s")
	v.SetDefault("run.detect_grace", "30s")
	v.SetDefault("schedule.enabled", true)
	v.SetDefault("schedule.ingest", "0 0 */4 * * *")
	v.SetDefault("schedule.run_on_boot", false)
	v.SetDefault("celestrak.base_url", "https://celestrak.org")
	v.SetDefault("celestrak.group", "active")
	v.SetDefault("celestrak.timeout", "15s")
	v.SetDefault("spacetrack.base_url", "https://www.space-track.org")
	v.SetDefault("spacetrack.timeout", "15s")
	v.SetDefault("spacetrack.session_ttl", "2h")
	v.SetDefault("session_cache.driver", "memory")
	v.SetDefault("session_cache.redis_addr", "localhost:6379")
	v.SetDefault("session_cache.redis_db", 0)
	v.SetDefault("session_cache.key_prefix", "orbitwatch:")
	v.SetDefault("history.trailing_row_cap", 500)
	v.SetDefault("history.health_window", "168h")
	v.SetDefault("history.maneuver_window", "720h")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// WatchlistNames maps the normalized object id to its display name.
func (c Config) WatchlistNames() map[string]string {
	out := make(map[string]string, len(c.Watchlist))
	for _, obj := range c.Watchlist {
		id := orbit.NormalizeCatalogID(obj.ObjectID)
		if id == "" {
			continue
		}
		out[id] = strings.TrimSpace(obj.Name)
	}
	return out
}
