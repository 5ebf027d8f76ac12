// cmd/container.go
//
// Composition root. Owns infrastructure (DB, Redis, AWS clients, file
// storage, mail) and composes the bounded-context containers.
package main

import (
	"context"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/config"
	"github.com/Abraxas-365/staffhub/pkg/dbx"
	"github.com/Abraxas-365/staffhub/pkg/directory/directorycontainer"
	"github.com/Abraxas-365/staffhub/pkg/fsx"
	"github.com/Abraxas-365/staffhub/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/staffhub/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/staffhub/pkg/iam/iamcontainer"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/Abraxas-365/staffhub/pkg/notifx"
	"github.com/Abraxas-365/staffhub/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/staffhub/pkg/notifx/notifxses"
	"github.com/Abraxas-365/staffhub/pkg/orgchart/orgchartcontainer"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const localAssetsPrefix = "/uploads"

// Container holds shared infrastructure and the module containers.
type Container struct {
	Config *config.Config

	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	AWS        aws.Config
	Tx         *dbx.TxManager
	Uploader   *fsx.Uploader
	Notifier   *notifx.Client
	UploadRoot string // set in local storage mode only

	// Bounded contexts
	IAM       *iamcontainer.Container
	Directory *directorycontainer.Container
	OrgChart  *orgchartcontainer.Container
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Database
	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	c.Tx = dbx.NewTxManager(db)
	logx.Info("  ✅ Database connected")

	// 2. Redis (JWKS cache)
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.Redis.Ping(ctx).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
	}
	logx.Info("  ✅ Redis connected")

	// 3. AWS
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(c.Config.AWS.Region))
	if err != nil {
		logx.Fatalf("Unable to load AWS SDK config: %v", err)
	}
	c.AWS = awsCfg

	// 4. File storage and mail
	c.initFileStorage()
	c.initNotifier()

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initFileStorage() {
	storage := c.Config.Storage
	c.Uploader = fsx.NewUploader()

	switch storage.Mode {
	case "s3":
		client := s3.NewFromConfig(c.AWS)
		c.Uploader.Mount(fsx.BucketUser, fsxs3.NewS3FileSystem(client, storage.UserBucket, ""), storage.UserBucketURL)
		logx.Infof("  ✅ S3 user bucket configured (bucket: %s)", storage.UserBucket)

	case "local":
		localFS, err := fsxlocal.NewLocalFileSystem(storage.UploadDir)
		if err != nil {
			logx.Fatalf("Failed to initialize local file system: %v", err)
		}
		baseURL := storage.UserBucketURL
		if baseURL == "" {
			baseURL = localAssetsPrefix
		}
		c.Uploader.Mount(fsx.BucketUser, localFS, baseURL)
		c.UploadRoot = localFS.GetBasePath()
		logx.Infof("  ✅ Local file system configured (path: %s)", c.UploadRoot)

	default:
		logx.Fatalf("Unknown STORAGE_MODE: %s (use 'local' or 's3')", storage.Mode)
	}
}

func (c *Container) initNotifier() {
	n := c.Config.Notifx

	var sender notifx.EmailSender
	switch n.Provider {
	case "ses":
		sesCfg := c.AWS.Copy()
		sesCfg.Region = n.AWSRegion
		sender = notifxses.NewSESProvider(ses.NewFromConfig(sesCfg), n.FromAddress)
	case "console":
		sender = notifxconsole.NewConsoleProvider()
	default:
		logx.Fatalf("Unknown NOTIFX_PROVIDER: %s (use 'console' or 'ses')", n.Provider)
	}

	var opts []notifx.Option
	if n.ConfigurationSet != "" {
		opts = append(opts, notifx.WithConfigurationSet(n.ConfigurationSet))
	}
	c.Notifier = notifx.NewClient(sender, n.Sender(), opts...)
	logx.Infof("  ✅ Notifications via %s", n.Provider)
}

// ---------------------------------------------------------------------------
// Module composition
// ---------------------------------------------------------------------------

// initModules builds the directory store first: IAM resolves callers
// through it and the directory services need IAM's gateway and authorizer.
func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")

	store := directorycontainer.NewStore(c.DB)

	c.IAM = iamcontainer.New(iamcontainer.Deps{
		Redis:     c.Redis,
		Cfg:       c.Config,
		Cognito:   cip.NewFromConfig(c.AWS),
		Accounts:  store.Accounts,
		Employees: store.Employees,
		Admins:    store.Admins,
		Notifier:  c.Notifier,
	})

	c.Directory = directorycontainer.New(directorycontainer.Deps{
		Store:      store,
		Tx:         c.Tx,
		Cfg:        c.Config,
		Gateway:    c.IAM.Gateway,
		Authorizer: c.IAM.Authorizer,
		Audit:      c.IAM.Audit,
		Assets:     c.Uploader,
		Notifier:   c.Notifier,
	})

	c.OrgChart = orgchartcontainer.New(orgchartcontainer.Deps{
		DB:         c.DB,
		Tx:         c.Tx,
		Cfg:        c.Config,
		Authorizer: c.IAM.Authorizer,
	})
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.IAM != nil {
		c.IAM.Close()
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	if err := logx.Sync(); err != nil {
		logx.Debugf("log sync: %v", err)
	}
	logx.Info("✅ Cleanup complete")
}
