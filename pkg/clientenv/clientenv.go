// Package clientenv resolves what a backend-facing command works with: the
// effective configuration, a logger, the backend client and the persisted
// session.
package clientenv

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chat"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatview"
	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
	"github.com/anmerino-pnd/proyectoCenace/pkg/dotdir"
	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream"
	eventstreamutils "github.com/anmerino-pnd/proyectoCenace/pkg/eventstream/utils"
	"github.com/anmerino-pnd/proyectoCenace/pkg/logger"
	"github.com/anmerino-pnd/proyectoCenace/pkg/render"
	"github.com/anmerino-pnd/proyectoCenace/pkg/session"
	"github.com/anmerino-pnd/proyectoCenace/pkg/utils"
)

// renderTTL bounds how long a rendered answer stays cached.
const renderTTL = 30 * time.Minute

// Env is built once per command invocation.
type Env struct {
	Config    *config.Config
	ConfigDir string
	Debug     bool
	Logger    *zap.Logger
	Client    *backend.Client
	Session   *session.Session

	publisher eventstream.Publisher
}

// Resolve reads the configuration with the flags of flagSets bound on top of
// the environment, config.toml and defaults.
func Resolve(cmd *cobra.Command, flagSets ...config.FlagSet) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	for _, fs := range flagSets {
		keys := make([]string, 0, len(fs))
		for key := range fs {
			keys = append(keys, key)
		}
		config.BindRegisteredFlags(v, cmd, fs, keys)
	}

	return config.FromViper(v), nil
}

// New builds the Env of cmd and restores the persisted session.
func New(cmd *cobra.Command, flagSets ...config.FlagSet) (*Env, error) {
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return nil, fmt.Errorf("could not get debug flag: %w", err)
	}
	configDir, _ := cmd.Flags().GetString("config-dir")

	cfg, err := Resolve(cmd, append([]config.FlagSet{config.ClientFlags}, flagSets...)...)
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger(debug)
	log.Debug("resolved config",
		zap.String("api_endpoint", cfg.Client.APIEndpoint),
		zap.String("timeout", cfg.Client.Timeout),
	)

	sess := session.New(
		session.WithStore(dotdir.NewManager(), configDir),
		session.WithLogger(log),
	)
	if err := sess.Restore(); err != nil {
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	return &Env{
		Config:    cfg,
		ConfigDir: configDir,
		Debug:     debug,
		Logger:    log,
		Client: backend.NewClient(cfg.Client.APIEndpoint,
			backend.WithTimeout(cfg.TimeoutDuration()),
			backend.WithLogger(log),
		),
		Session: sess,
	}, nil
}

// RequireUser returns the signed-in user.
func (e *Env) RequireUser() (string, error) {
	user := e.Session.UserID()
	if user == "" {
		return "", fmt.Errorf("%w: run \"cenace login <user>\" first", session.ErrNoUser)
	}
	return user, nil
}

// HTMLRenderer renders answers to HTML through the render cache.
func (e *Env) HTMLRenderer() chatstream.Renderer {
	return render.WithCache(render.NewHTML(), int(e.Config.Render.CacheSize), renderTTL)
}

// TerminalRenderer renders answers for the terminal with the configured
// style and width.
func (e *Env) TerminalRenderer() (render.Renderer, error) {
	t, err := render.NewTerminal(e.Config.Render.Style, int(e.Config.Render.Width))
	if err != nil {
		return nil, err
	}
	return render.WithCache(t, int(e.Config.Render.CacheSize), renderTTL), nil
}

// TerminalView prints the transcript to out. Answers are rendered with
// glamour when out is a terminal, unless raw is set.
func (e *Env) TerminalView(out io.Writer, raw bool) *chatview.View {
	opts := chatview.Options{Out: out, APIBase: e.Config.Client.APIEndpoint}
	if raw || !cliui.IsTerminal(out) {
		return chatview.New(opts)
	}

	r, err := e.TerminalRenderer()
	if err != nil {
		e.Logger.Warn("falling back to raw answers", zap.Error(err))
		return chatview.New(opts)
	}
	opts.Renderer = r
	return chatview.New(opts)
}

// Source identifies this client in published events.
func (e *Env) Source() eventstream.EventSource {
	return eventstream.EventSource{
		Client:      "cenace",
		Version:     utils.BuildVersion(),
		APIEndpoint: e.Config.Client.APIEndpoint,
	}
}

// Controller builds a chat controller reporting to view. The event
// publisher it uses is closed by Close.
func (e *Env) Controller(view chat.View) (*chat.Controller, error) {
	policy, err := chat.ParseLikePolicy(e.Config.Chat.LikePolicy)
	if err != nil {
		return nil, err
	}

	if e.publisher == nil {
		e.publisher, err = eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
			ProviderType: e.Config.Events.Provider,
			Brokers:      e.Config.BrokerList(),
			Topic:        e.Config.Events.Topic,
			Logger:       e.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating event publisher: %w", err)
		}
	}

	return chat.NewController(&chat.Config{
		Backend:    e.Client,
		Session:    e.Session,
		Renderer:   e.HTMLRenderer(),
		View:       view,
		Publisher:  e.publisher,
		Source:     e.Source(),
		K:          int(e.Config.Chat.K),
		Filter:     e.Config.Chat.Filter,
		LikePolicy: policy,
		Logger:     e.Logger,
	})
}

// Resume signs the persisted user into ctrl, which reopens the remembered
// conversation.
func (e *Env) Resume(ctx context.Context, ctrl *chat.Controller) error {
	user, err := e.RequireUser()
	if err != nil {
		return err
	}
	return ctrl.Login(ctx, user)
}

// Close flushes the event publisher and the logger.
func (e *Env) Close() {
	if e.publisher != nil {
		if err := e.publisher.Close(); err != nil {
			e.Logger.Warn("closing event publisher", zap.Error(err))
		}
	}
	_ = e.Logger.Sync()
}
