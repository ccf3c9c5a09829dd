package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocql/gocql"
)

// CassandraOptions selects the cluster and keyspace
type CassandraOptions struct {
	Host     string
	Port     int
	Keyspace string
	Username string
	Password string
}

var (
	// Cassandra session instance
	CassandraSession *gocql.Session
)

// schema is applied in order on every start; each statement is idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS scheduled_calls (
		requester_id text,
		id timeuuid,
		pair_key text,
		peer_id text,
		match_id text,
		connection_type text,
		purpose text,
		status text,
		created_at timestamp,
		PRIMARY KEY ((requester_id), id)
	) WITH CLUSTERING ORDER BY (id DESC)`,
}

// InitCassandra initializes the Cassandra session and applies the schema
func InitCassandra(opts CassandraOptions) error {
	// Create cluster configuration
	cluster := gocql.NewCluster(opts.Host)
	cluster.Port = opts.Port
	cluster.Keyspace = opts.Keyspace
	cluster.Authenticator = gocql.PasswordAuthenticator{
		Username: opts.Username,
		Password: opts.Password,
	}

	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second
	cluster.RetryPolicy = &gocql.SimpleRetryPolicy{
		NumRetries: 3,
	}
	cluster.NumConns = 4
	cluster.MaxWaitSchemaAgreement = 2 * time.Minute

	slog.Info("🔌 connecting to Cassandra", "host", opts.Host, "port", opts.Port)

	session, err := cluster.CreateSession()
	if err != nil {
		return fmt.Errorf("failed to connect to Cassandra: %w", err)
	}

	if err := Migrate(context.Background(), session); err != nil {
		session.Close()
		return err
	}

	CassandraSession = session
	slog.Info("✅ Cassandra session initialized", "keyspace", opts.Keyspace)
	return nil
}

// Migrate creates the tables the scheduler writes to
func Migrate(ctx context.Context, session *gocql.Session) error {
	for _, stmt := range schema {
		if err := session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("failed to apply Cassandra schema: %w", err)
		}
	}
	return nil
}

// CloseAllConnections closes the Cassandra and MongoDB connections
func CloseAllConnections(ctx context.Context) {
	if CassandraSession != nil {
		CassandraSession.Close()
		CassandraSession = nil
		slog.Info("✅ Cassandra connection closed")
	}
	if err := CloseMongo(ctx); err != nil {
		slog.Warn("failed to close MongoDB connection", "error", err)
	}
}

// HealthCheck performs a health check on Cassandra
func HealthCheck(ctx context.Context) error {
	if CassandraSession == nil {
		return fmt.Errorf("Cassandra session is not initialized")
	}
	return CassandraSession.Query("SELECT release_version FROM system.local").WithContext(ctx).Exec()
}
