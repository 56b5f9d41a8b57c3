package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config reúne tudo o que o servidor lê do ambiente.
type Config struct {
	Port    string
	BaseURL string

	StoreDriver string // "scylla" ou "memory"

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUser     string
	ScyllaPassword string
	ScyllaCACert   string

	RedisHost     string
	RedisPassword string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	JWTSecret     string
	SessionSecret string
	CORSOrigins   []string

	WebhookURL     string
	WebhookSecret  string
	WebhookTimeout time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	ShopEmail    string

	PixKey      string
	PixMerchant string
	PixCity     string

	DeliveryDays         int
	DeliveryIncludeToday bool
	DeliverySlots        []string
	DeliveryBuffer       time.Duration
	Timezone             string
}

// Load carrega o .env (se existir) e lê a configuração.
func Load() *Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Nenhum arquivo .env encontrado, usando as variáveis de ambiente do sistema")
	} else {
		log.Println("✅ Arquivo .env carregado com sucesso")
	}
	return FromEnv()
}

// FromEnv lê a configuração sem tocar no arquivo .env.
func FromEnv() *Config {
	return &Config{
		Port:    getEnv("PORT", "8080"),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		StoreDriver: getEnv("STORE_DRIVER", "scylla"),

		ScyllaHosts:    splitList(getEnv("SCYLLA_HOSTS", "127.0.0.1")),
		ScyllaKeyspace: getEnv("SCYLLA_KEYSPACE", "buymore"),
		ScyllaUser:     os.Getenv("SCYLLA_USER"),
		ScyllaPassword: os.Getenv("SCYLLA_PASSWORD"),
		ScyllaCACert:   os.Getenv("SCYLLA_SSL_CA_PATH"),

		RedisHost:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "product-images"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		JWTSecret:     getEnv("JWT_SECRET", "super_secret"),
		SessionSecret: getEnv("SESSION_SECRET", "buymore-session-secret"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		WebhookURL:     os.Getenv("WEBHOOK_URL"),
		WebhookSecret:  os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout: getDuration("WEBHOOK_TIMEOUT", 10*time.Second),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		ShopEmail:    os.Getenv("SHOP_EMAIL"),

		PixKey:      os.Getenv("PIX_KEY"),
		PixMerchant: getEnv("PIX_MERCHANT", "BUY MORE"),
		PixCity:     getEnv("PIX_CITY", "SAO PAULO"),

		DeliveryDays:         getInt("DELIVERY_DAYS", 5),
		DeliveryIncludeToday: os.Getenv("DELIVERY_INCLUDE_TODAY") == "true",
		DeliverySlots:        splitList(getEnv("DELIVERY_SLOTS", "08:00,10:00,14:00,16:00,18:00")),
		DeliveryBuffer:       getDuration("DELIVERY_BUFFER", 30*time.Minute),
		Timezone:             getEnv("TZ_NAME", "America/Sao_Paulo"),
	}
}

// Location devolve o fuso da loja, UTC se o nome for inválido.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("⚠️ Fuso horário inválido %q, usando UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s inválido (%q), usando %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ %s inválido (%q), usando %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
