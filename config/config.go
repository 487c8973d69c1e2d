package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Port     int    `mapstructure:"port"`
	MongoURI string `mapstructure:"mongo_uri"`
	MongoDB  string `mapstructure:"mongo_db"`
	JWTKey   string `mapstructure:"jwt_key"`
	Debug    bool   `mapstructure:"debug"`

	MinIO MinIOConfig `mapstructure:"minio"`

	// 单次上传的超时时间
	UploadTimeout time.Duration `mapstructure:"upload_timeout"`
	// 版本冲突时的最大保存次数
	MaxSaveAttempts int `mapstructure:"max_save_attempts"`
}

// MinIOConfig 对象存储配置
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PublicURL string `mapstructure:"public_url"`
}

// LoadConfig 从环境变量和配置文件加载配置
func LoadConfig() *Config {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVariables(v)

	// 配置文件不存在时只使用环境变量
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return defaultConfig()
	}
	cfg.Debug = v.GetString("gin_mode") == "debug" || cfg.Debug
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("mongo_uri", "mongodb://127.0.0.1:27017/works?authSource=admin")
	v.SetDefault("mongo_db", "works")
	v.SetDefault("jwt_key", "your-secret-key") // 实际环境应替换为安全密钥
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("minio.bucket", "works")
	v.SetDefault("upload_timeout", 60*time.Second)
	v.SetDefault("max_save_attempts", 3)
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("port", "PORT")
	v.BindEnv("mongo_uri", "MONGO_URI")
	v.BindEnv("mongo_db", "MONGO_DB")
	v.BindEnv("jwt_key", "JWT_KEY")
	v.BindEnv("gin_mode", "GIN_MODE")

	// MinIO
	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("minio.bucket", "MINIO_BUCKET")
	v.BindEnv("minio.use_ssl", "MINIO_USE_SSL")
	v.BindEnv("minio.public_url", "MINIO_PUBLIC_URL")

	v.BindEnv("upload_timeout", "UPLOAD_TIMEOUT")
	v.BindEnv("max_save_attempts", "MAX_SAVE_ATTEMPTS")
}

func defaultConfig() *Config {
	return &Config{
		Port:            8080,
		MongoURI:        "mongodb://127.0.0.1:27017/works?authSource=admin",
		MongoDB:         "works",
		JWTKey:          "your-secret-key",
		Debug:           true,
		MinIO:           MinIOConfig{Bucket: "works"},
		UploadTimeout:   60 * time.Second,
		MaxSaveAttempts: 3,
	}
}
