package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	MongoURI          string
	MongoDatabase     string
	DataDir           string
	ListenAddr        string
	JWTSecret         string
	DefaultTaskFolder string
	StaleJobAge       time.Duration

	KafkaBrokers     []string
	KafkaJobTopic    string
	KafkaStatusTopic string
	KafkaGroupID     string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool

	logger *zap.Logger
}

var (
	configInstance *Config
	once           sync.Once
)

// InitConfig loads the configuration once per process from the .env file,
// when present, and the environment.
func InitConfig() (*Config, error) {
	var initErr error

	once.Do(func() {
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err := config.Build()
		if err != nil {
			logger = zap.NewNop()
		}
		defer logger.Sync()

		if err := godotenv.Load(); err != nil {
			if os.IsNotExist(err) {
				logger.Warn("No .env file found; falling back to system environment variables")
			} else {
				initErr = fmt.Errorf("failed to load .env file: %w", err)
				logger.Error("Config file load error", zap.Error(err))
				return
			}
		} else {
			logger.Debug("Successfully loaded .env file")
		}

		configInstance, initErr = Load(logger)
	})

	if initErr != nil {
		return nil, initErr
	}
	if configInstance == nil {
		return nil, fmt.Errorf("configuration initialization failed unexpectedly")
	}
	return configInstance, nil
}

// Load reads the configuration from environment variables.
func Load(logger *zap.Logger) (*Config, error) {
	c := &Config{
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDatabase:     getenv("MONGO_DATABASE", "cliweb"),
		DataDir:           getenv("DATA_DIR", "."),
		ListenAddr:        getenv("LISTEN_ADDR", ":8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		DefaultTaskFolder: os.Getenv("DEFAULT_TASK_FOLDER"),
		KafkaJobTopic:     getenv("KAFKA_JOB_TOPIC", "cliweb.jobs"),
		KafkaStatusTopic:  getenv("KAFKA_STATUS_TOPIC", "cliweb.job-status"),
		KafkaGroupID:      getenv("KAFKA_GROUP_ID", "cliweb"),
		MinioEndpoint:     os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:    os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:    os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:       getenv("MINIO_BUCKET", "cliweb"),
		logger:            logger,
	}

	for _, broker := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			c.KafkaBrokers = append(c.KafkaBrokers, broker)
		}
	}

	if v := os.Getenv("MINIO_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MINIO_SECURE %q: %w", v, err)
		}
		c.MinioSecure = secure
	}

	age, err := time.ParseDuration(getenv("STALE_JOB_AGE", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_JOB_AGE: %w", err)
	}
	c.StaleJobAge = age

	if c.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set; every request is anonymous")
	}
	logger.Debug("Configuration loaded",
		zap.String("listen_addr", c.ListenAddr),
		zap.String("data_dir", c.DataDir),
		zap.Strings("kafka_brokers", c.KafkaBrokers),
		zap.String("minio_endpoint", c.MinioEndpoint),
		zap.String("minio_access_key", maskKey(c.MinioAccessKey)),
		zap.String("jwt_secret", maskKey(c.JWTSecret)))
	return c, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// UseKafka reports whether jobs are dispatched through Kafka.
func (c *Config) UseKafka() bool {
	return len(c.KafkaBrokers) > 0
}

// UseMinio reports whether file content is kept in an object store.
func (c *Config) UseMinio() bool {
	return c.MinioEndpoint != ""
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
