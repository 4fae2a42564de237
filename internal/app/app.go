package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

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

// App owns every shared dependency and the service lifecycle. Fields are
// populated once by the init chain in New and read-only afterwards.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	bcrypt    hash.Hash
	uid       uid.NumberID
	oid       uid.StringID
	uuid      uid.StringID
	otp       otp.Generator
	jwt       jwt.JWT

	// resources
	dbConn        *pgxpool.Pool
	cacheConn     *redis.Client
	idemp         idempotency.Idempotency
	mail          mail.Mail
	messaging     messaging.Messaging
	storage       storage.Storage
	sessions      *session.Manager
	casbin        *casbin.Enforcer
	casbinWatcher *pgxcasbin.Watcher

	// server
	router     *router.Router
	httpServer *http.Server

	// shutdown hooks, run in registration order by Stop
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New builds the application. Init steps run in dependency order; each one
// exits the process on failure since the service cannot run partially wired.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initCasbin()
	app.initSessions()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
