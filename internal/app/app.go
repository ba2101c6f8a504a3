// Package app wires configuration into the gateway's services. Every
// entrypoint builds exactly one App.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/prometheus/client_golang/prometheus"

	"cpfgate/internal/audit"
	"cpfgate/internal/authorizer"
	"cpfgate/internal/customer"
	"cpfgate/internal/customer/store"
	"cpfgate/internal/decision"
	decisionmetrics "cpfgate/internal/decision/metrics"
	"cpfgate/internal/decision/ports"
	"cpfgate/internal/directory"
	directorymetrics "cpfgate/internal/directory/metrics"
	"cpfgate/internal/jwttoken"
	"cpfgate/internal/platform/config"
	platformredis "cpfgate/internal/platform/redis"
	"cpfgate/internal/secrets"
	"cpfgate/pkg/cpf"
)

const auditTopicTimeout = 5 * time.Second

// App holds the constructed services. Fields are nil when the configuration
// does not enable them.
type App struct {
	Strategy   decision.Strategy
	Engine     *decision.Engine
	Authorizer *authorizer.Authorizer
	// Signer is nil for the policy strategy or when no key is configured.
	Signer *jwttoken.Service
	Lookup *directory.Service
	Health map[string]func(context.Context) error

	closers []func(context.Context) error
}

// New builds the App. Configuration problems never fail construction; they are
// logged here and surface as configuration-error decisions per request.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) *App {
	a := &App{Health: map[string]func(context.Context) error{}}
	b := &builder{ctx: ctx, cfg: cfg, logger: logger}

	strategy, err := decision.StrategyByName(cfg.Auth.Strategy)
	unknown := err != nil
	if unknown {
		// no resolver means every request is denied as misconfigured
		logger.ErrorContext(ctx, "unknown strategy, denying all requests", "strategy", cfg.Auth.Strategy)
		strategy = decision.PolicyStrategy()
	}
	if cfg.Auth.ValidateCPF != nil {
		strategy.ValidateFormat = *cfg.Auth.ValidateCPF
	}
	if err := strategy.Validate(); err != nil {
		logger.ErrorContext(ctx, "invalid strategy", "error", err)
	}
	a.Strategy = strategy

	var validatorOpts []cpf.Option
	if cfg.Auth.RejectRepeated {
		validatorOpts = append(validatorOpts, cpf.WithRejectRepeated())
	}
	validator := cpf.NewValidator(validatorOpts...)

	decisionMetrics := decisionmetrics.New(reg)
	engineOpts := []decision.Option{
		decision.WithLogger(logger),
		decision.WithMetrics(decisionMetrics),
		decision.WithValidator(validator),
		decision.WithAuditor(b.auditPublisher(a)),
	}

	var resolver ports.CustomerResolver
	switch {
	case unknown:
	case strategy.Name == config.StrategyMock:
		var prefix customer.PrefixResolver
		resolver = prefix
		engineOpts = append(engineOpts, decision.WithConfigCheck(prefix.CheckConfig))
	default:
		r := b.customerResolver(decisionMetrics)
		resolver = r
		engineOpts = append(engineOpts, decision.WithConfigCheck(r.CheckConfig))
	}

	var signer authorizer.Signer
	if strategy.Output == decision.OutputToken {
		svc, signerErr := b.signer(strategy)
		if signerErr == nil {
			a.Signer = svc
			signer = svc
		}
		engineOpts = append(engineOpts, decision.WithConfigCheck(authorizer.SignerCheck(signer, signerErr)))
	}

	a.Engine = decision.NewEngine(strategy, resolver, engineOpts...)
	a.Authorizer = authorizer.New(a.Engine, signer, authorizer.WithLogger(logger))
	a.Lookup = b.directoryService(a, validator, reg)

	logger.InfoContext(ctx, "gateway configured",
		"strategy", strategy.Name,
		"validate_cpf", strategy.ValidateFormat,
		"output", string(strategy.Output),
	)
	return a
}

// Close releases every resource New opened, in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type builder struct {
	ctx    context.Context
	cfg    config.Config
	logger *slog.Logger

	awsLoaded bool
	awsCfg    aws.Config
	awsCfgErr error
}

// aws loads the shared SDK config at most once.
func (b *builder) aws() (aws.Config, error) {
	if b.awsLoaded {
		return b.awsCfg, b.awsCfgErr
	}
	b.awsLoaded = true
	var opts []func(*awsconfig.LoadOptions) error
	if b.cfg.Secrets.Region != "" {
		opts = append(opts, awsconfig.WithRegion(b.cfg.Secrets.Region))
	}
	b.awsCfg, b.awsCfgErr = awsconfig.LoadDefaultConfig(b.ctx, opts...)
	if b.awsCfgErr != nil {
		b.awsCfgErr = fmt.Errorf("load aws config: %w", b.awsCfgErr)
	}
	return b.awsCfg, b.awsCfgErr
}

func (b *builder) customerResolver(observer customer.Observer) *customer.Resolver {
	var secretStore customer.SecretStore
	switch b.cfg.Secrets.Backend {
	case secrets.BackendEnv:
		secretStore = secrets.NewEnvSecretStore()
	case secrets.BackendAWS:
		awsCfg, err := b.aws()
		if err != nil {
			b.logger.ErrorContext(b.ctx, "secret store unavailable", "error", err)
			break
		}
		secretStore = secrets.NewAWSSecretStore(secretsmanager.NewFromConfig(awsCfg))
	default:
		b.logger.ErrorContext(b.ctx, "unknown secret backend", "backend", b.cfg.Secrets.Backend)
	}

	db := b.cfg.Database
	datastore, err := store.New(db.Driver, store.Settings{
		Host:           db.Host,
		Port:           db.Port,
		Name:           db.Name,
		SSLMode:        db.SSLMode,
		ConnectTimeout: db.ConnectTimeout,
	})
	if err != nil {
		b.logger.ErrorContext(b.ctx, "customer datastore unavailable", "error", err)
	}

	return customer.NewResolver(secretStore, datastore, customer.Lookup{
		SecretID:        b.cfg.Secrets.SecretID,
		RequireSecretID: b.cfg.Secrets.Backend == secrets.BackendAWS,
		Table:           db.Table,
		Column:          db.Column,
	}, customer.WithLogger(b.logger), customer.WithObserver(observer))
}

func (b *builder) signer(strategy decision.Strategy) (*jwttoken.Service, error) {
	ttl := b.cfg.Token.TTL
	if strategy.Name == config.StrategyMock {
		ttl = jwttoken.DefaultTTL
	}
	svc, err := jwttoken.New(jwttoken.Config{
		SigningKey:           b.cfg.Token.SigningKey,
		Issuer:               b.cfg.Token.Issuer,
		TTL:                  ttl,
		AllowInsecureDefault: strategy.AllowInsecureKey,
	})
	if err != nil {
		b.logger.ErrorContext(b.ctx, "token signer unavailable", "error", err)
		return nil, err
	}
	if svc.Insecure() {
		b.logger.WarnContext(b.ctx, "signing tokens with the insecure default key", "strategy", strategy.Name)
	}
	return svc, nil
}

func (b *builder) auditPublisher(a *App) audit.Publisher {
	if len(b.cfg.Audit.Brokers) == 0 {
		return audit.NewLogPublisher(b.logger)
	}
	pub, err := audit.NewKafkaPublisher(b.cfg.Audit.Brokers, b.cfg.Audit.Topic, audit.WithKafkaLogger(b.logger))
	if err != nil {
		b.logger.ErrorContext(b.ctx, "kafka audit publisher unavailable, logging instead", "error", err)
		return audit.NewLogPublisher(b.logger)
	}
	ctx, cancel := context.WithTimeout(b.ctx, auditTopicTimeout)
	defer cancel()
	if err := pub.EnsureTopic(ctx, 1, 1); err != nil {
		b.logger.WarnContext(b.ctx, "could not ensure audit topic", "topic", b.cfg.Audit.Topic, "error", err)
	}
	a.closers = append(a.closers, pub.Close)
	return pub
}

func (b *builder) directoryService(a *App, validator *cpf.Validator, reg prometheus.Registerer) *directory.Service {
	opts := []directory.Option{directory.WithLogger(b.logger), directory.WithValidator(validator)}
	if b.cfg.Directory.UserPoolID == "" {
		return directory.NewService(nil, opts...)
	}
	awsCfg, err := b.aws()
	if err != nil {
		b.logger.ErrorContext(b.ctx, "directory unavailable", "error", err)
		return directory.NewService(nil, opts...)
	}
	var finder directory.Finder = directory.NewCognitoFinder(
		cognitoidentityprovider.NewFromConfig(awsCfg),
		b.cfg.Directory.UserPoolID,
		b.cfg.Directory.Attribute,
	)

	client, err := platformredis.New(b.ctx, b.cfg.Redis)
	switch {
	case err != nil:
		b.logger.WarnContext(b.ctx, "directory cache disabled", "error", err)
	case client != nil:
		finder = directory.NewCachedFinder(finder, client.Client,
			directory.WithCacheTTL(b.cfg.Directory.CacheTTL),
			directory.WithCacheMetrics(directorymetrics.New(reg)),
			directory.WithCacheLogger(b.logger),
		)
		a.Health["redis"] = client.Health
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	}
	return directory.NewService(finder, opts...)
}
