package config

import (
	"os"
	"strconv"
)

// Store backends
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string // 为空时不启用鉴权

	DatasetPath     string
	StoreBackend    string
	MongoURI        string
	MongoDatabase   string
	IngestBatchSize int
	RateLimit       int // 每分钟每个 IP 的最大请求数
}

// Load 加载配置
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/geolife/geolife.db"
	}

	datasetPath := os.Getenv("DATASET_PATH")
	if datasetPath == "" {
		datasetPath = "./dataset"
	}

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = BackendSQLite
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	mongoDatabase := os.Getenv("MONGO_DATABASE")
	if mongoDatabase == "" {
		mongoDatabase = "geolife"
	}

	return &Config{
		Port:            port,
		DBPath:          dbPath,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		DatasetPath:     datasetPath,
		StoreBackend:    backend,
		MongoURI:        mongoURI,
		MongoDatabase:   mongoDatabase,
		IngestBatchSize: envInt("INGEST_BATCH_SIZE", 5000),
		RateLimit:       envInt("RATE_LIMIT", 120),
	}
}

// envInt 读取整数环境变量，缺失或非法时返回默认值
func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
