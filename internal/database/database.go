package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"time"

	"buymore_back_end/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// =============================================
// SCYLLA DB
// =============================================

// ConnectScylla abre a sessão do keyspace da loja. As tabelas são criadas
// fora da aplicação, via scripts/scylladb_init.cql.
func ConnectScylla(cfg *config.Config) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 20
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	if cfg.ScyllaUser != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUser,
			Password: cfg.ScyllaPassword,
		}
	}

	if cfg.ScyllaCACert != "" {
		caCert, err := os.ReadFile(cfg.ScyllaCACert)
		if err != nil {
			return nil, fmt.Errorf("não foi possível ler o certificado CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("certificado CA inválido")
		}
		cluster.SslOpts = &gocql.SslOptions{Config: &tls.Config{RootCAs: pool}}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erro ao criar sessão para %s: %w", cfg.ScyllaKeyspace, err)
	}
	log.Printf("✅ Sessão ScyllaDB aberta para o keyspace '%s'", cfg.ScyllaKeyspace)
	return session, nil
}

// =============================================
// REDIS
// =============================================

func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("erro de conexão com o Redis: %w", err)
	}
	log.Println("✅ Conectado ao Redis")
	return client, nil
}

// =============================================
// ELASTICSEARCH (opcional)
// =============================================

// ConnectElastic devolve nil, nil quando ELASTIC_URL não está definido.
func ConnectElastic(cfg *config.Config) (*elasticsearch.Client, error) {
	if cfg.ElasticURL == "" {
		log.Println("⚠️ ELASTIC_URL vazio, busca por substring no catálogo")
		return nil, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao criar cliente Elasticsearch: %w", err)
	}
	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("erro de conexão com o Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	log.Println("✅ Conectado ao Elasticsearch")
	return client, nil
}

// =============================================
// MINIO (opcional)
// =============================================

// ConnectMinIO garante que o bucket das imagens de produto existe.
// Devolve nil, nil quando MINIO_ENDPOINT não está definido.
func ConnectMinIO(ctx context.Context, cfg *config.Config) (*minio.Client, error) {
	if cfg.MinioEndpoint == "" {
		log.Println("⚠️ MINIO_ENDPOINT vazio, upload de imagens desativado")
		return nil, nil
	}
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("erro de conexão com o MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("erro ao verificar bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("erro ao criar bucket %s: %w", cfg.MinioBucket, err)
		}
		log.Println("🪣 Bucket criado:", cfg.MinioBucket)
	} else {
		log.Println("🪣 Bucket MinIO já existe:", cfg.MinioBucket)
	}

	log.Println("✅ Conectado ao MinIO:", cfg.MinioEndpoint)
	return client, nil
}
