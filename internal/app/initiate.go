package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/clock"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goroutine"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/hash"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/idempotency"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/instrument"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/jwt"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/mail"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/messaging"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/otp"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/pgxcasbin"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/router"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/storage"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/uid"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/validator"
)

// fatal logs the failed init step and exits. Wiring errors at startup are
// unrecoverable, so there is no point returning them up the chain.
func fatal(msg string, err error) {
	if err == nil {
		return
	}
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	fatal("failed to init config", err)

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          true,
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	fatal("failed to init instrumentation", err)
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))
	a.bcrypt = hash.NewBcrypt(a.config.GetInt("hash.bcrypt.cost"), a.config.GetString("hash.bcrypt.pepper"))
	a.otp = otp.NewNumeric()

	v10, err := validator.NewV10Validator()
	fatal("failed to init validation v10 validator", err)
	a.validator = v10

	snow, err := uid.NewSnowflake(a.config.GetInt64("app.node_id"))
	fatal("failed to init uid number snowflake", err)
	a.uid = snow

	objID, err := uid.NewObjectIDGenerator()
	fatal("failed to init uid string object_id", err)
	a.oid = objID
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("modules.auth.session_ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	fatal("failed to init jwt token", err)
	a.jwt = defaultJWT
}

func (a *App) initDatabase() {
	poolCfg, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	fatal("failed to parse DB connection string.", err)

	poolCfg.MaxConns = a.config.GetInt32("database.pool.max_conns")
	poolCfg.MinConns = a.config.GetInt32("database.pool.min_conns")
	poolCfg.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	poolCfg.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	poolCfg.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, poolCfg)
	fatal("failed to create DB connection pool", err)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	fatal("failed to ping DB", pool.Ping(pingCtx))

	a.dbConn = pool
}

func (a *App) initCache() {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	fatal("failed to parse redis url", err)

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	fatal("failed to init redis", rdb.Ping(pingCtx).Err())

	a.cacheConn = rdb
	a.idemp = idempotency.New(a.cacheConn)
}

func (a *App) initMail() {
	sender, err := mail.NewSMTP(mail.SMTPConfig{
		Host:     a.config.GetString("mail.host"),
		Port:     a.config.GetInt("mail.port"),
		Username: a.config.GetString("mail.username"),
		Password: a.config.GetString("mail.password"),
		From:     a.config.GetString("mail.from"),
	})
	fatal("failed to init mail", err)
	a.mail = sender
}

func (a *App) initStorage() {
	driver := strings.TrimSpace(a.config.GetString("storage.driver"))

	var gcsClient *gcs.Client
	if driver == storage.DriverGCS {
		gcsClient = a.buildGCSClient()
	}

	stg, err := storage.NewFromDriver(a.ctx, driver, storage.FactoryOptions{
		S3: storage.S3Options{
			Region:       strings.TrimSpace(a.config.GetString("storage.s3.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.s3.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.s3.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.s3.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.s3.session_token")),
			UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{
			Client:         gcsClient,
			GoogleAccessID: strings.TrimSpace(a.config.GetString("storage.gcs.signer_access_id")),
			PrivateKey:     a.config.GetBinary("storage.gcs.signer_private_key"),
		},
		MinIO: storage.MinIOOptions{
			Region:       strings.TrimSpace(a.config.GetString("storage.minio.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.minio.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.minio.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.minio.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.minio.session_token")),
			UseSSL:       a.config.GetBool("storage.minio.use_ssl"),
		},
	})
	fatal("failed to init storage", err)

	a.storage = stg
}

func (a *App) buildGCSClient() *gcs.Client {
	var opts []option.ClientOption
	if a.config.GetBool("storage.gcs.without_auth") {
		opts = append(opts, option.WithoutAuthentication())
	}
	if v := strings.TrimSpace(a.config.GetString("storage.gcs.credentials_file")); v != "" {
		// #nosec G304 -- path is from trusted config file.
		credsJSON, err := os.ReadFile(v)
		fatal("failed to read gcs credentials file", err)
		creds, err := google.CredentialsFromJSON(a.ctx, credsJSON, gcs.ScopeFullControl)
		fatal("failed to parse gcs credentials file", err)
		opts = append(opts, option.WithCredentials(creds))
	}
	if v := a.config.GetBinary("storage.gcs.credentials_json"); len(v) > 0 {
		creds, err := google.CredentialsFromJSON(a.ctx, v, gcs.ScopeFullControl)
		fatal("failed to parse gcs credentials json", err)
		opts = append(opts, option.WithCredentials(creds))
	}
	if v := strings.TrimSpace(a.config.GetString("storage.gcs.endpoint")); v != "" {
		opts = append(opts, option.WithEndpoint(v))
	}
	if v := strings.TrimSpace(a.config.GetString("storage.gcs.user_agent")); v != "" {
		opts = append(opts, option.WithUserAgent(v))
	}
	if len(opts) == 0 {
		return nil
	}

	client, err := gcs.NewClient(a.ctx, opts...)
	fatal("failed to init gcs client", err)
	return client
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr:         a.config.GetString("messaging.nsq.producer_addr"),
			ConsumerNSQDAddrs:    a.config.GetArray("messaging.nsq.consumer_nsqd_addrs"),
			ConsumerLookupdAddrs: a.config.GetArray("messaging.nsq.consumer_lookupd_addrs"),
			ProducerConfig:       a.nsqConfig("messaging.nsq.producer_config"),
			ConsumerConfig:       a.nsqConfig("messaging.nsq.consumer_config"),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.PingInterval(a.config.GetSecond("messaging.nats.ping_interval_seconds")),
				nats.MaxPingsOutstanding(a.config.GetInt("messaging.nats.max_pings_outstanding")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
		},
		PubSub: messaging.PubSubConfig{
			ProjectID: a.config.GetString("messaging.pubsub.project_id"),
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

// nsqConfig reads one nsq.Config from the key prefix. Producer and consumer
// share the shape; nsq ignores the consumer-only fields on the producer side.
func (a *App) nsqConfig(prefix string) *nsq.Config {
	cfg := nsq.NewConfig()
	cfg.MaxInFlight = a.config.GetInt(prefix + ".max_in_flight")
	cfg.MaxAttempts = a.config.GetUint16(prefix + ".max_attempts")
	cfg.LookupdPollInterval = a.config.GetSecond(prefix + ".lookupd_poll_interval_seconds")
	cfg.DialTimeout = a.config.GetSecond(prefix + ".dial_timeout_seconds")
	cfg.ReadTimeout = a.config.GetSecond(prefix + ".read_timeout_seconds")
	cfg.WriteTimeout = a.config.GetSecond(prefix + ".write_timeout_seconds")
	cfg.DefaultRequeueDelay = a.config.GetSecond(prefix + ".default_requeue_delay_seconds")
	cfg.MaxRequeueDelay = a.config.GetSecond(prefix + ".max_requeue_delay_seconds")
	return cfg
}

func (a *App) initCasbin() {
	const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`
	m, err := model.NewModelFromString(rbacModel)
	fatal("failed to create model casbin", err)

	adapter, err := pgxcasbin.NewAdapter(a.ctx, a.dbConn, pgxcasbin.WithTableName("casbin_rules"))
	fatal("failed to create adapter casbin", err)

	e, err := casbin.NewEnforcer(m, adapter)
	fatal("failed to init casbin", err)

	watcher, err := pgxcasbin.NewWatcherWithPool(a.ctx, a.dbConn,
		pgxcasbin.OptionWatcher{
			NotifySelf: true,
			Channel:    "scm_casbin_psql_watcher",
			Verbose:    false,
			LocalID:    a.oid.Generate(),
		},
	)
	fatal("failed to create watcher casbin", err)

	fatal("failed to create watcher fallback casbin", watcher.SetUpdateCallback(pgxcasbin.DefaultCallback(e)))
	fatal("failed to set watcher casbin", e.SetWatcher(watcher))

	e.EnableAutoSave(true)
	e.EnableAutoNotifyWatcher(true)

	a.casbin = e
	a.casbinWatcher = watcher
}

func (a *App) initSessions() {
	a.sessions = session.NewManager(session.Config{
		TTL:        a.config.GetMinute("modules.auth.session_ttl_minutes"),
		SweepEvery: a.config.GetMinute("modules.auth.session_sweep_minutes"),
		Clock:      a.clock,
		ID:         a.uuid,
	})
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Sessions:   a.sessions,
		Instrument: a.ins,
		Enforcer:   a.casbin,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.addCloser("Instrument", func(ctx context.Context) error { return a.ins.Shutdown(ctx) })
	a.addCloser("Messaging", func(context.Context) error { return a.messaging.Close() })
	a.addCloser("CasbinWatcher", func(context.Context) error {
		if a.casbinWatcher != nil {
			a.casbinWatcher.Close()
		}
		return nil
	})
	a.addCloser("Sessions", func(context.Context) error { return a.sessions.Close() })
	a.addCloser("Redis", func(context.Context) error { return a.cacheConn.Close() })
	a.addCloser("Database", func(context.Context) error {
		a.dbConn.Close()
		return nil
	})
	a.addCloser("Storage", func(context.Context) error { return a.storage.Close() })
	a.addCloser("Config", func(context.Context) error { return a.config.Close() })
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, struct {
		name string
		fn   func(context.Context) error
	}{name: name, fn: fn})
}
