package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"dawncall"`
	// 对外可达的基础 URL，电话回调需要公网地址
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8888"`

	// PostgreSQL 配置
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"dawncall"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"dwc"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT 配置
	JWTSecret        string `env:"JWT_SECRET"` // 必填，用于签名 JWT
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// 电话服务配置
	// demo 模式下不触达真实运营商，所有投递写入本地记录
	TelephonyProvider string `env:"TELEPHONY_PROVIDER" envDefault:"twilio"` // twilio, aliyun, recorder
	DemoMode          bool   `env:"DEMO_MODE" envDefault:"false"`

	// Twilio 配置
	TwilioAccountSID  string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `env:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `env:"TWILIO_PHONE_NUMBER"`
	TwilioBaseURL     string `env:"TWILIO_BASE_URL" envDefault:"https://api.twilio.com"`

	// 阿里云短信配置
	// 注意：AccessKey 和 SecretKey 通过阿里云 SDK 的环境变量自动获取
	// 需要设置环境变量：ALIBABA_CLOUD_ACCESS_KEY_ID 和 ALIBABA_CLOUD_ACCESS_KEY_SECRET
	AliCloudAccessKeyID     string `env:"ALIBABA_CLOUD_ACCESS_KEY_ID"`
	AliCloudAccessKeySecret string `env:"ALIBABA_CLOUD_ACCESS_KEY_SECRET"`
	SMSSignName             string `env:"SMS_SIGN_NAME"`
	SMSTemplateCode         string `env:"SMS_TEMPLATE_CODE"`

	// 手机号哈希盐值，用于限流和日志键，避免明文落盘
	PhoneHashSalt string `env:"PHONEHASH_SALT"`

	// 天气服务配置
	WeatherAPIKey       string `env:"WEATHER_API_KEY"`
	WeatherBaseURL      string `env:"WEATHER_BASE_URL" envDefault:"https://api.weatherapi.com/v1"`
	WeatherCacheSeconds int    `env:"WEATHER_CACHE_SECONDS" envDefault:"3600"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"` // 每秒请求数

	// 手机号验证配置
	VerificationExpireSeconds int `env:"VERIFICATION_EXPIRE_SECONDS" envDefault:"600"`
	VerificationMaxAttempts   int `env:"VERIFICATION_MAX_ATTEMPTS" envDefault:"3"`
	VerificationMaxDaily      int `env:"VERIFICATION_MAX_DAILY" envDefault:"10"`

	// OpenTelemetry 配置，endpoint 为空则不上报
	OTLPEndpoint   string  `env:"OTLP_ENDPOINT" envDefault:""`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"0.1"`
	ServiceVersion string  `env:"SERVICE_VERSION" envDefault:"dev"`

	// 调度配置
	DispatchWindowSeconds int `env:"DISPATCH_WINDOW_SECONDS" envDefault:"60"`  // 到期扫描窗口
	SnoozeMinutes         int `env:"SNOOZE_MINUTES" envDefault:"10"`           // 贪睡延迟
	MaxDeliveryAttempts   int `env:"MAX_DELIVERY_ATTEMPTS" envDefault:"3"`     // 单次执行最大投递尝试
	RetryBackoffSeconds   int `env:"RETRY_BACKOFF_SECONDS" envDefault:"120"`   // 投递失败重试间隔
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.JWTSecret == "" {
		// 开发和测试环境允许缺省，生产环境必须显式配置
		if Cfg.Environment == "production" {
			log.Fatal("JWT_SECRET is required in production")
		}
		log.Printf("WARN: JWT_SECRET is not set, using insecure development default")
		Cfg.JWTSecret = "dawncall-dev-secret"
	}

	if Cfg.WeatherAPIKey == "" {
		log.Printf("WARN: WEATHER_API_KEY is not set, weather announcements will be skipped")
	}

	switch Cfg.TelephonyProvider {
	case "twilio":
		if !Cfg.DemoMode && (Cfg.TwilioAccountSID == "" || Cfg.TwilioAuthToken == "") {
			log.Printf("WARN: Twilio credentials are not set, delivery will fail outside demo mode")
		}
	case "aliyun":
		if Cfg.SMSSignName == "" || Cfg.SMSTemplateCode == "" {
			log.Printf("WARN: SMS_SIGN_NAME / SMS_TEMPLATE_CODE is not set, SMS service may not work properly")
		}
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
