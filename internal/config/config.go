package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the connection string understood by the gorm postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// DatabaseURL returns the URL form used by the migration runner.
func (d DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker and topic settings.
type KafkaConfig struct {
	Brokers      []string
	GroupPrefix  string
	BookingTopic string
	HostelTopic  string
}

// RedisConfig holds the connection settings for the lock store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BookingConfig holds lifecycle engine settings.
type BookingConfig struct {
	ExpiryWindow time.Duration
	Currency     string
}

// SweeperConfig holds expiry sweeper settings.
type SweeperConfig struct {
	Schedule string
	LockTTL  time.Duration
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	DBConfig      DatabaseConfig
	JWTConfig     JWTConfig
	KafkaConfig   KafkaConfig
	RedisConfig   RedisConfig
	BookingConfig BookingConfig
	SweeperConfig SweeperConfig
}

const envPrefix = "BOOKING"

// Load reads configuration from BOOKING_* environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_port", "8080")
	v.SetDefault("app_env", "development")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "hostel_booking")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("jwt.secret", "")

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_prefix", "hostel-")
	v.SetDefault("kafka.booking_topic", "booking.events")
	v.SetDefault("kafka.hostel_topic", "hostel.events")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("booking.expiry_window_hours", 24)
	v.SetDefault("booking.currency", "KES")

	v.SetDefault("sweeper.schedule", "@every 5m")
	v.SetDefault("sweeper.lock_ttl", "2m")
}

func fromViper(v *viper.Viper) (*ServiceConfig, error) {
	appEnv := v.GetString("app_env")
	secret := v.GetString("jwt.secret")
	if secret == "" && appEnv != "development" {
		return nil, fmt.Errorf("%s_JWT_SECRET is required outside development", envPrefix)
	}
	if secret == "" {
		secret = "dev-secret"
	}

	expiryHours := v.GetInt("booking.expiry_window_hours")
	if expiryHours <= 0 {
		return nil, fmt.Errorf("booking.expiry_window_hours must be positive, got %d", expiryHours)
	}

	port := v.GetString("service_port")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: appEnv,
		DBConfig: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		JWTConfig: JWTConfig{Secret: secret},
		KafkaConfig: KafkaConfig{
			Brokers:      splitList(v.GetString("kafka.brokers")),
			GroupPrefix:  v.GetString("kafka.group_prefix"),
			BookingTopic: v.GetString("kafka.booking_topic"),
			HostelTopic:  v.GetString("kafka.hostel_topic"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		BookingConfig: BookingConfig{
			ExpiryWindow: time.Duration(expiryHours) * time.Hour,
			Currency:     strings.ToUpper(v.GetString("booking.currency")),
		},
		SweeperConfig: SweeperConfig{
			Schedule: v.GetString("sweeper.schedule"),
			LockTTL:  v.GetDuration("sweeper.lock_ttl"),
		},
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
